package middlewares

import (
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/tandem/internal/http/errors"
	"github.com/dropDatabas3/tandem/internal/observability/logger"
)

// TokenParser valida un token de sesión y devuelve el userId.
type TokenParser interface {
	Parse(token string) (string, error)
}

// sessionToken busca el token en la cookie de sesión y, si no está, en Authorization: Bearer.
func sessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value)
	}
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) > 7 && strings.EqualFold(ah[:7], "bearer ") {
		return strings.TrimSpace(ah[7:])
	}
	return ""
}

// RequireAuth exige una sesión válida e inyecta el userId en el contexto.
func RequireAuth(tokens TokenParser, cookieName string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := sessionToken(r, cookieName)
			if raw == "" {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}
			userID, err := tokens.Parse(raw)
			if err != nil {
				logger.From(r.Context()).Debug("session rejected", logger.Err(err))
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}
			ctx := WithUserID(r.Context(), userID)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(userID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
