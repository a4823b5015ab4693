// Package view projects entities into client documents.
//
// Every entity declares an explicit attribute table. An attribute is emitted
// only when its view set contains the requested context, and attributes are
// always emitted in declaration order so equal inputs give equal bytes.
package view

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/bilemo/bilemo/internal/paginate"
)

// Context selects which attributes of an entity are rendered.
type Context string

const (
	// None renders every attribute.
	None Context = ""
	List Context = "list"
	Show Context = "show"
)

// LinksField is the document key holding hyperlinks.
const LinksField = "_links"

// Attribute is one renderable property of T.
type Attribute[T any] struct {
	Name  string
	Views []Context
	Value func(T) any
}

func (a Attribute[T]) visibleIn(ctx Context) bool {
	return ctx == None || slices.Contains(a.Views, ctx)
}

// LinkRule declares a hyperlink attached in some contexts.
type LinkRule struct {
	Rel    string
	Route  string
	Method string
	Views  []Context
	// WithID substitutes the entity id into the route pattern.
	WithID bool
}

// Link is a rendered hyperlink.
type Link struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method"`
}

// Resolver turns a route name and optional id into an absolute URL.
// An empty result means the route is unknown.
type Resolver interface {
	URL(route, id string) string
}

// Field is one key/value pair of a Document.
type Field struct {
	Name  string
	Value any
}

// Document is an ordered JSON object.
type Document []Field

// Get returns the value of the named field.
func (d Document) Get(name string) (any, bool) {
	for _, f := range d {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Has reports whether the document carries the named field.
func (d Document) Has(name string) bool {
	_, ok := d.Get(name)
	return ok
}

// MarshalJSON writes fields in order.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Schema is the attribute and link table of an entity type.
type Schema[T any] struct {
	Attributes []Attribute[T]
	Links      []LinkRule
	ID         func(T) string
}

// Render projects entity for ctx. A nil resolver renders no links.
func (s Schema[T]) Render(entity T, ctx Context, r Resolver) Document {
	doc := make(Document, 0, len(s.Attributes)+1)
	for _, attr := range s.Attributes {
		if attr.visibleIn(ctx) {
			doc = append(doc, Field{Name: attr.Name, Value: attr.Value(entity)})
		}
	}

	if links := s.links(entity, ctx, r); len(links) > 0 {
		doc = append(doc, Field{Name: LinksField, Value: links})
	}
	return doc
}

// RenderAll projects every element with the same context.
func (s Schema[T]) RenderAll(entities []T, ctx Context, r Resolver) []Document {
	docs := make([]Document, 0, len(entities))
	for _, e := range entities {
		docs = append(docs, s.Render(e, ctx, r))
	}
	return docs
}

func (s Schema[T]) links(entity T, ctx Context, r Resolver) []Link {
	if r == nil {
		return nil
	}

	var id string
	if s.ID != nil {
		id = s.ID(entity)
	}

	var links []Link
	for _, rule := range s.Links {
		if ctx != None && !slices.Contains(rule.Views, ctx) {
			continue
		}
		ruleID := ""
		if rule.WithID {
			ruleID = id
		}
		href := r.URL(rule.Route, ruleID)
		if href == "" {
			continue
		}
		links = append(links, Link{Rel: rule.Rel, Href: href, Method: rule.Method})
	}
	return links
}

// PageDocument is a projected page. Meta is copied through unfiltered.
type PageDocument struct {
	Items []Document    `json:"items"`
	Meta  paginate.Meta `json:"meta"`
}

// RenderPage projects the items of p with ctx.
func RenderPage[T any](s Schema[T], p *paginate.Page[T], ctx Context, r Resolver) PageDocument {
	return PageDocument{
		Items: s.RenderAll(p.Items, ctx, r),
		Meta:  p.Meta,
	}
}
