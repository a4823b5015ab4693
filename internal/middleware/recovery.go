package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/bilemo/bilemo/internal/apierr"
)

// Recoverer turns a panic into the generic 500 envelope.
func Recoverer(logger *slog.Logger, errs *apierr.Translator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.Error("panic recovered",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.Any("panic", rvr),
					slog.String("stack", string(debug.Stack())),
				)
				errs.Write(w, r, fmt.Errorf("panic: %v", rvr))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
