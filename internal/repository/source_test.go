package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilemo/bilemo/internal/model"
	"github.com/bilemo/bilemo/internal/paginate"
)

func TestSource_SelectSQL(t *testing.T) {
	src := (&Repository{}).UserSource()

	got, err := src.selectSQL(OwnedBy("cust-1"))
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "id", "firstname", "lastname", "email", "customer_id", "created_at" FROM "users"`+
			` WHERE customer_id = @customer_id ORDER BY "id" ASC LIMIT @limit OFFSET @offset`,
		got)
}

func TestSource_SelectSQL_Catalog(t *testing.T) {
	src := (&Repository{}).ProductSource()

	q := Catalog()
	q.OrderBy = append(q.OrderBy, paginate.Order{Column: "published_at", Desc: true})
	got, err := src.selectSQL(q)
	require.NoError(t, err)
	assert.Contains(t, got, `FROM "products" ORDER BY "id" ASC, "published_at" DESC`)
	assert.NotContains(t, got, "WHERE")
}

func TestSource_RejectsUnknownOrderColumn(t *testing.T) {
	src := (&Repository{}).UserSource()

	q := OwnedBy("cust-1")
	q.OrderBy = []paginate.Order{{Column: "id; DROP TABLE users"}}
	_, err := src.selectSQL(q)
	assert.Error(t, err)

	_, err = src.selectSQL(paginate.Query{})
	assert.True(t, errors.Is(err, paginate.ErrUnordered))
}

func TestNamedArgs(t *testing.T) {
	q := OwnedBy("cust-1")

	args := namedArgs(q, &paginate.Window{Offset: 20, Limit: 10})
	assert.Equal(t, "cust-1", args["customer_id"])
	assert.Equal(t, 10, args["limit"])
	assert.Equal(t, 20, args["offset"])

	countArgs := namedArgs(q, nil)
	assert.NotContains(t, countArgs, "limit")

	// the query's own map is not mutated
	assert.Len(t, q.Args, 1)
}

// Compile-time checks that sources satisfy the paginator contract.
var (
	_ paginate.Source[*model.User]    = (*Source[model.User])(nil)
	_ paginate.Source[*model.Product] = (*Source[model.Product])(nil)
)
