package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/outside-subscription/api/responses"
	pkgerrors "github.com/angelmondragon/outside-subscription/pkg/errors"
	"github.com/angelmondragon/outside-subscription/pkg/logger"
)

const SessionIDHeader = "X-Session-Id"

const maxSessionIDLength = 64

// RequireSession reads the flow session id from X-Session-Id. Whether the
// session exists is decided by the session service.
func RequireSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(SessionIDHeader))
			if id == "" || len(id) > maxSessionIDLength {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Session-Id header required").
					WithDetails(map[string]string{"header": SessionIDHeader}))
				return
			}

			ctx := WithSessionID(r.Context(), id)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
