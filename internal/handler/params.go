package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bilemo/bilemo/internal/apierr"
	"github.com/bilemo/bilemo/internal/paginate"
)

const msgPositiveInteger = "Must be a positive integer"

// pageRequest parses the page and limit query parameters. Absent values are
// left zero for the paginator defaults; malformed ones are violations.
func pageRequest(r *http.Request, opts paginate.Options) (paginate.Request, error) {
	var (
		req        paginate.Request
		violations []apierr.Violation
	)
	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			violations = append(violations, apierr.Violation{Field: "page", Message: msgPositiveInteger})
		}
		req.Page = n
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil || n < 1:
			violations = append(violations, apierr.Violation{Field: "limit", Message: msgPositiveInteger})
		case opts.MaxLimit > 0 && n > opts.MaxLimit:
			violations = append(violations, apierr.Violation{
				Field:   "limit",
				Message: fmt.Sprintf("Must be at most %d", opts.MaxLimit),
			})
		}
		req.Limit = n
	}

	if len(violations) > 0 {
		return paginate.Request{}, apierr.Validation(violations...)
	}
	return req, nil
}

// decodeJSON decodes the request body into dst. Decoding errors are left for
// the translator to classify.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
