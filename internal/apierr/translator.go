package apierr

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// requestIDHeader is read from the response, where the request id middleware puts it.
const requestIDHeader = "X-Request-ID"

// Body is the error envelope.
type Body struct {
	Code       int         `json:"code"`
	Message    string      `json:"message"`
	Violations []Violation `json:"violations,omitempty"`
}

// statusCoder is implemented by errors that carry their own status.
// Their own message is client-facing; wrapping context is not.
type statusCoder interface {
	error
	StatusCode() int
}

// Translator is the single point turning errors into responses.
type Translator struct {
	Logger *slog.Logger
}

// NewTranslator returns a Translator logging to logger.
func NewTranslator(logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{Logger: logger}
}

// Classify maps err to a tagged error. Unknown errors become a 500 whose
// message never includes the original text.
func (t *Translator) Classify(err error) *Error {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		return Wrap(err, sc.StatusCode(), sc.Error())
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		e := Validation(FromValidator(verrs)...)
		e.Err = err
		return e
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Wrap(err, http.StatusBadRequest, MsgInvalidJSON)
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return Wrap(err, http.StatusRequestEntityTooLarge, MsgBodyTooLarge)
	}

	return Wrap(err, http.StatusInternalServerError, MsgInternal)
}

// Write classifies err and writes the envelope.
func (t *Translator) Write(w http.ResponseWriter, r *http.Request, err error) {
	e := t.Classify(err)

	attrs := []any{
		slog.Int("status", e.Status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", w.Header().Get(requestIDHeader)),
	}
	if e.Status >= http.StatusInternalServerError {
		t.Logger.Error("request failed", append(attrs, slog.Any("error", err))...)
	} else {
		t.Logger.Debug("request rejected", append(attrs, slog.String("message", e.Message))...)
	}

	WriteBody(w, e.Status, Body{Code: e.Status, Message: e.Message, Violations: e.Violations})
}

// WriteBody writes an envelope with status.
func WriteBody(w http.ResponseWriter, status int, body Body) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Del("ETag")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
