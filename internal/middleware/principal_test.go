package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bilemo/bilemo/internal/apierr"
	"github.com/bilemo/bilemo/internal/auth"
	"github.com/bilemo/bilemo/internal/model"
)

func TestRequirePrincipal(t *testing.T) {
	testCases := []struct {
		name       string
		principal  *model.Principal
		wantStatus int
	}{
		{name: "authenticated", principal: &model.Principal{CustomerID: "cust-1"}, wantStatus: http.StatusOK},
		{name: "anonymous", principal: nil, wantStatus: http.StatusUnauthorized},
		{name: "principal without customer", principal: &model.Principal{KeyID: "key-1"}, wantStatus: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequirePrincipal(apierr.NewTranslator(nil))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tc.principal != nil {
				req = req.WithContext(auth.ContextWithPrincipal(req.Context(), tc.principal))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}
