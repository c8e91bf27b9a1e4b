package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dan9191/task-service/internal/auth"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// TokenHeader carries the raw token, without a scheme prefix.
const TokenHeader = "Authorization"

// TokenVerifier verifies a raw token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type authFailure struct {
	Auth    bool   `json:"auth"`
	Message string `json:"message"`
}

// AuthMiddleware rejects requests without a valid token and stores the
// token's user id in the request context.
func AuthMiddleware(tokens TokenVerifier, log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(TokenHeader)
			if token == "" {
				writeAuthFailure(w, http.StatusForbidden, "No token provided.")
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				var authErr *auth.AuthorizationError
				kind := auth.Invalid
				if errors.As(err, &authErr) {
					kind = authErr.Kind
				}
				log.WithFields(logrus.Fields{
					"path":   r.URL.Path,
					"reason": kind.String(),
				}).Warn("Rejected token")
				writeAuthFailure(w, http.StatusUnauthorized, "Failed to authenticate token.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}

func writeAuthFailure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(authFailure{Auth: false, Message: message})
}
