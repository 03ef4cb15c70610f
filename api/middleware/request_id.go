package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/nebulashop-backend/api/validators"
	"github.com/angelmondragon/nebulashop-backend/pkg/logger"
	"github.com/angelmondragon/nebulashop-backend/pkg/types"
)

const maxRequestIDLength = 128

// RequestID echoes a well-formed X-Request-Id or mints a new one. The id is
// set on the response before the handler runs so error bodies can carry it.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID, err := validators.SanitizeIdentifier("request id", r.Header.Get(types.RequestIDHeader), maxRequestIDLength)
			if err != nil {
				reqID = uuid.NewString()
			}
			w.Header().Set(types.RequestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
