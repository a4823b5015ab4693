package view

import (
	"net/http"
	"strings"

	"github.com/bilemo/bilemo/internal/model"
)

// Route names resolved by Routes.
const (
	RouteUserList     = "users.list"
	RouteUserShow     = "users.show"
	RouteUserUpdate   = "users.update"
	RouteUserDelete   = "users.delete"
	RouteProductList  = "products.list"
	RouteProductShow  = "products.show"
	idPlaceholder     = "{id}"
	defaultAPIBaseURL = "http://localhost:8080"
)

// DefaultPatterns maps route names to path patterns.
var DefaultPatterns = map[string]string{
	RouteUserList:    "/api/users",
	RouteUserShow:    "/api/users/{id}",
	RouteUserUpdate:  "/api/users/{id}",
	RouteUserDelete:  "/api/users/{id}",
	RouteProductList: "/api/products",
	RouteProductShow: "/api/products/{id}",
}

// Routes resolves route names against a base URL.
type Routes struct {
	BaseURL  string
	Patterns map[string]string
}

// NewRoutes returns a resolver over DefaultPatterns.
func NewRoutes(baseURL string) Routes {
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	return Routes{BaseURL: strings.TrimRight(baseURL, "/"), Patterns: DefaultPatterns}
}

// URL implements Resolver.
func (r Routes) URL(route, id string) string {
	pattern, ok := r.Patterns[route]
	if !ok {
		return ""
	}
	if strings.Contains(pattern, idPlaceholder) {
		if id == "" {
			return ""
		}
		pattern = strings.Replace(pattern, idPlaceholder, id, 1)
	}
	return r.BaseURL + pattern
}

var (
	listAndShow = []Context{List, Show}
	showOnly    = []Context{Show}
	listOnly    = []Context{List}
)

// UserSchema is the projection table of users.
var UserSchema = Schema[*model.User]{
	ID: func(u *model.User) string { return u.ID },
	Attributes: []Attribute[*model.User]{
		{Name: "id", Views: listAndShow, Value: func(u *model.User) any { return u.ID }},
		{Name: "firstname", Views: listAndShow, Value: func(u *model.User) any { return u.Firstname }},
		{Name: "lastname", Views: listAndShow, Value: func(u *model.User) any { return u.Lastname }},
		{Name: "email", Views: showOnly, Value: func(u *model.User) any { return u.Email }},
		{Name: "customer", Views: showOnly, Value: func(u *model.User) any { return u.CustomerID }},
		{Name: "created_at", Views: showOnly, Value: func(u *model.User) any { return u.CreatedAt }},
	},
	Links: []LinkRule{
		{Rel: "self", Route: RouteUserShow, Method: http.MethodGet, Views: showOnly, WithID: true},
		{Rel: "update", Route: RouteUserUpdate, Method: http.MethodPut, Views: showOnly, WithID: true},
		{Rel: "delete", Route: RouteUserDelete, Method: http.MethodDelete, Views: showOnly, WithID: true},
		{Rel: "all", Route: RouteUserList, Method: http.MethodGet, Views: listOnly},
	},
}

// ProductSchema is the projection table of products.
var ProductSchema = Schema[*model.Product]{
	ID: func(p *model.Product) string { return p.ID },
	Attributes: []Attribute[*model.Product]{
		{Name: "id", Views: listAndShow, Value: func(p *model.Product) any { return p.ID }},
		{Name: "name", Views: listAndShow, Value: func(p *model.Product) any { return p.Name }},
		{Name: "price", Views: listAndShow, Value: func(p *model.Product) any { return p.Price }},
		{Name: "description", Views: showOnly, Value: func(p *model.Product) any { return p.Description }},
		{Name: "quantity", Views: showOnly, Value: func(p *model.Product) any { return p.Quantity }},
		{Name: "published_at", Views: showOnly, Value: func(p *model.Product) any { return p.PublishedAt }},
	},
	Links: []LinkRule{
		{Rel: "self", Route: RouteProductShow, Method: http.MethodGet, Views: showOnly, WithID: true},
		{Rel: "all", Route: RouteProductList, Method: http.MethodGet, Views: listOnly},
	},
}
