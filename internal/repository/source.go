package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/bilemo/bilemo/internal/model"
	"github.com/bilemo/bilemo/internal/paginate"
)

// Column lists selected into each model; order matches the struct.
var (
	userColumns    = []string{"id", "firstname", "lastname", "email", "customer_id", "created_at"}
	productColumns = []string{"id", "name", "description", "quantity", "price", "published_at"}
)

// Source pages through one table, scanning rows into *T by db tag.
// It implements paginate.Source[*T].
type Source[T any] struct {
	pool    *pgxpool.Pool
	table   string
	columns []string
}

// UserSource pages through users.
func (r *Repository) UserSource() *Source[model.User] {
	return &Source[model.User]{pool: r.pool, table: "users", columns: userColumns}
}

// ProductSource pages through products.
func (r *Repository) ProductSource() *Source[model.Product] {
	return &Source[model.Product]{pool: r.pool, table: "products", columns: productColumns}
}

// OwnedBy is the query of users owned by customerID, oldest first.
func OwnedBy(customerID string) paginate.Query {
	return paginate.Query{
		Filter:  "customer_id = @customer_id",
		Args:    map[string]any{"customer_id": customerID},
		OrderBy: []paginate.Order{{Column: "id"}},
	}
}

// Catalog is the query of all products, oldest first.
func Catalog() paginate.Query {
	return paginate.Query{OrderBy: []paginate.Order{{Column: "id"}}}
}

// Count implements paginate.Source.
func (s *Source[T]) Count(ctx context.Context, q paginate.Query) (int, error) {
	query := "SELECT count(*) FROM " + pq.QuoteIdentifier(s.table) + whereClause(q)

	var total int
	if err := s.pool.QueryRow(ctx, query, namedArgs(q, nil)).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.table, err)
	}
	return total, nil
}

// Fetch implements paginate.Source.
func (s *Source[T]) Fetch(ctx context.Context, q paginate.Query, w paginate.Window) ([]*T, error) {
	query, err := s.selectSQL(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, namedArgs(q, &w))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.table, err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.table, err)
	}
	return items, nil
}

func (s *Source[T]) selectSQL(q paginate.Query) (string, error) {
	order, err := s.orderClause(q.OrderBy)
	if err != nil {
		return "", err
	}

	quoted := make([]string, len(s.columns))
	for i, c := range s.columns {
		quoted[i] = pq.QuoteIdentifier(c)
	}

	return "SELECT " + strings.Join(quoted, ", ") +
		" FROM " + pq.QuoteIdentifier(s.table) +
		whereClause(q) +
		" ORDER BY " + order +
		" LIMIT @limit OFFSET @offset", nil
}

// orderClause quotes each ordering key. Only selected columns may be used.
func (s *Source[T]) orderClause(orderBy []paginate.Order) (string, error) {
	if len(orderBy) == 0 {
		return "", paginate.ErrUnordered
	}

	parts := make([]string, 0, len(orderBy))
	for _, o := range orderBy {
		if !slices.Contains(s.columns, o.Column) {
			return "", fmt.Errorf("cannot order %s by unknown column %q", s.table, o.Column)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, pq.QuoteIdentifier(o.Column)+" "+dir)
	}
	return strings.Join(parts, ", "), nil
}

func whereClause(q paginate.Query) string {
	if strings.TrimSpace(q.Filter) == "" {
		return ""
	}
	return " WHERE " + q.Filter
}

func namedArgs(q paginate.Query, w *paginate.Window) pgx.NamedArgs {
	args := make(pgx.NamedArgs, len(q.Args)+2)
	for k, v := range q.Args {
		args[k] = v
	}
	if w != nil {
		args["limit"] = w.Limit
		args["offset"] = w.Offset
	}
	return args
}
