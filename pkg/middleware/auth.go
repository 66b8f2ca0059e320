package middleware

import (
	"net/http"
	"strings"

	"gas-stock/internal/data/repository"
	"gas-stock/internal/permission"
	"gas-stock/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenParser validates a signed token of the given type.
type TokenParser interface {
	ParseToken(token, tokenType string) (*utils.TokenClaims, error)
}

// AuthJWT validates the bearer access token and reloads the account so
// role changes and deletions take effect before the token expires.
func AuthJWT(tokens TokenParser, accounts repository.AccountRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			claims, err := tokens.ParseToken(parts[1], utils.TokenTypeAccess)
			if err != nil {
				logger.Warn("Rejected access token", zap.Error(err), zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			res := accounts.GetUserByID(r.Context(), userID)
			if res.IsInternal() {
				logger.Error("Failed to load principal",
					zap.String("user_id", userID.String()),
					zap.String("cause", res.Message))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if !res.Success || !res.Data.User.IsActive {
				logger.Warn("Token for missing or inactive user", zap.String("user_id", userID.String()))
				utils.ResponseUnauthorized(w, "User not found or inactive")
				return
			}

			ctx := permission.WithPrincipal(r.Context(), permission.NewPrincipal(res.Data))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require rejects the request with 403 unless the principal set by
// AuthJWT satisfies pred.
func Require(pred func(permission.Principal) bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := permission.FromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if !pred(principal) {
				logger.Warn("Permission denied",
					zap.String("user_id", principal.UserID.String()),
					zap.String("role", string(principal.Role)),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "You do not have permission to perform this action")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
