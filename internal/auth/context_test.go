package auth

import (
	"context"
	"testing"

	"github.com/bilemo/bilemo/internal/model"
)

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	if PrincipalFromContext(ctx) != nil {
		t.Fatal("empty context should carry no principal")
	}
	if CustomerIDFromContext(ctx) != "" {
		t.Fatal("empty context should carry no customer")
	}

	p := &model.Principal{CustomerID: "cust-1", KeyID: "key-1"}
	ctx = ContextWithPrincipal(ctx, p)

	if got := PrincipalFromContext(ctx); got != p {
		t.Errorf("PrincipalFromContext = %+v, want %+v", got, p)
	}
	if got := CustomerIDFromContext(ctx); got != "cust-1" {
		t.Errorf("CustomerIDFromContext = %q, want cust-1", got)
	}
}
