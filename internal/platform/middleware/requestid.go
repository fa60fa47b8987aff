package middleware

import (
	"net/http"

	"github.com/Bahjat/a11y-insight-tool/internal/platform/requestid"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = requestid.Header

// RequestID is middleware that assigns a unique request ID to each request and
// echoes it on the response. If the incoming request already carries an
// X-Request-ID header, that value is reused; otherwise a new UUID v4 is
// generated.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := requestid.NewContext(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
