// Package paginate computes offset/limit windows over ordered queries.
//
// A Paginator never reads request state. Callers pass the requested page and
// limit explicitly, along with a Query describing the ordered, filtered
// collection and a Source able to count and fetch it.
package paginate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Defaults applied when a request leaves page or limit unset.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ErrUnordered is returned for a query without an ordering key.
// Offset windows over an unordered set are not stable between requests.
var ErrUnordered = errors.New("paginate: query has no ordering")

// Order is one ordering key of a query.
type Order struct {
	Column string
	Desc   bool
}

// Query describes a filtered, ordered collection.
// Filter is interpreted by the Source; Args are bound to its named parameters.
type Query struct {
	Filter  string
	Args    map[string]any
	OrderBy []Order
}

// Window is the (offset, limit) slice of an ordered set for one page.
type Window struct {
	Offset int
	Limit  int
}

// Source counts and fetches windows of a query.
type Source[T any] interface {
	Count(ctx context.Context, q Query) (int, error)
	Fetch(ctx context.Context, q Query, w Window) ([]T, error)
}

// Request is the page a caller asks for. Zero values select defaults.
type Request struct {
	Page  int
	Limit int
}

// Meta describes a page in relation to the whole collection.
type Meta struct {
	Limit       int `json:"limit"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalItems  int `json:"total_items"`
}

// Page is one window of a collection plus its metadata.
type Page[T any] struct {
	Items []T `json:"items"`
	Meta  Meta `json:"meta"`
}

// Options configures pagination defaults.
type Options struct {
	DefaultLimit int
	MaxLimit     int
	// StrictEmpty makes page 1 of an empty collection out of range,
	// matching a literal reading of page > ceil(total/limit).
	StrictEmpty bool
}

// DefaultOptions returns the stock pagination settings.
func DefaultOptions() Options {
	return Options{DefaultLimit: DefaultLimit, MaxLimit: MaxLimit}
}

// OutOfRangeError reports a page past the last page of a collection.
type OutOfRangeError struct {
	Page     int
	LastPage int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("Page parameter can't be superior to the last page : %d", e.LastPage)
}

// StatusCode maps the error to a not-found response.
func (e *OutOfRangeError) StatusCode() int {
	return http.StatusNotFound
}

// Normalize fills defaults into req and caps the limit.
func (o Options) Normalize(req Request) Request {
	defLimit := o.DefaultLimit
	if defLimit < 1 {
		defLimit = DefaultLimit
	}
	if req.Page < 1 {
		req.Page = DefaultPage
	}
	if req.Limit < 1 {
		req.Limit = defLimit
	}
	if o.MaxLimit > 0 && req.Limit > o.MaxLimit {
		req.Limit = o.MaxLimit
	}
	return req
}

// WindowFor returns the window covering page of size limit.
func WindowFor(page, limit int) Window {
	return Window{Offset: limit * (page - 1), Limit: limit}
}

// TotalPages returns ceil(totalItems / limit).
func TotalPages(totalItems, limit int) int {
	if limit < 1 || totalItems <= 0 {
		return 0
	}
	return (totalItems + limit - 1) / limit
}

// Paginate executes one page of q against src.
//
// The collection is counted first. When the requested page lies past the last
// page, the window fetch is skipped and an *OutOfRangeError is returned.
func Paginate[T any](ctx context.Context, src Source[T], q Query, req Request, opts Options) (*Page[T], error) {
	if len(q.OrderBy) == 0 {
		return nil, ErrUnordered
	}

	req = opts.Normalize(req)

	total, err := src.Count(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}

	lastPage := TotalPages(total, req.Limit)
	if req.Page > lastPage && (lastPage > 0 || req.Page > 1 || opts.StrictEmpty) {
		return nil, &OutOfRangeError{Page: req.Page, LastPage: lastPage}
	}

	items := make([]T, 0)
	if total > 0 {
		fetched, err := src.Fetch(ctx, q, WindowFor(req.Page, req.Limit))
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", req.Page, err)
		}
		if len(fetched) > req.Limit {
			fetched = fetched[:req.Limit]
		}
		items = append(items, fetched...)
	}

	return &Page[T]{
		Items: items,
		Meta: Meta{
			Limit:       req.Limit,
			CurrentPage: req.Page,
			TotalPages:  lastPage,
			TotalItems:  total,
		},
	}, nil
}
