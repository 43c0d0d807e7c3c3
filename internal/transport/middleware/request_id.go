package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/termpipe/termpipe/pkg/ctxutil"
)

// RequestID tags every request with an identifier: the client's
// X-Request-Id when present, a fresh UUID otherwise. The ID is stored in
// the context and echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		ctx := ctxutil.WithRequestID(r.Context(), id)
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
