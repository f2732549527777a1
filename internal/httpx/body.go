// Package httpx holds the JSON request/response plumbing shared by the
// server and the route collaborators.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
)

type ctxKey string

const bodyKey ctxKey = "json_body"

// DefaultBodyLimit matches the conventional 100kb JSON body limit.
const DefaultBodyLimit int64 = 100 * 1024

// ErrNoBody is returned by DecodeJSON when the request carried no JSON body.
var ErrNoBody = errors.New("request has no JSON body")

// isJSON reports whether the Content-Type names JSON: application/json or any
// */*+json type.
func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// JSONBody parses JSON request bodies once, before routing. The validated
// document is stored in the request context and the body is replaced with a
// fresh reader over the same bytes. Non-JSON and empty bodies pass through.
// Malformed JSON gets 400 and bodies over limit get 413.
func JSONBody(limit int64) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultBodyLimit
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody || !isJSON(r.Header.Get("Content-Type")) {
				next.ServeHTTP(w, r)
				return
			}

			data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
			_ = r.Body.Close()
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
					return
				}
				WriteError(w, http.StatusBadRequest, "could not read request body")
				return
			}

			if len(bytes.TrimSpace(data)) == 0 {
				r.Body = io.NopCloser(bytes.NewReader(data))
				next.ServeHTTP(w, r)
				return
			}

			if !json.Valid(data) {
				WriteError(w, http.StatusBadRequest, "malformed JSON body")
				return
			}

			ctx := context.WithValue(r.Context(), bodyKey, json.RawMessage(data))
			r = r.WithContext(ctx)
			r.Body = io.NopCloser(bytes.NewReader(data))
			next.ServeHTTP(w, r)
		})
	}
}

// Body returns the parsed JSON body, if the request had one.
func Body(ctx context.Context) (json.RawMessage, bool) {
	raw, ok := ctx.Value(bodyKey).(json.RawMessage)
	return raw, ok
}

// DecodeJSON unmarshals the parsed body into v.
func DecodeJSON(r *http.Request, v any) error {
	raw, ok := Body(r.Context())
	if !ok {
		return ErrNoBody
	}
	return json.Unmarshal(raw, v)
}
