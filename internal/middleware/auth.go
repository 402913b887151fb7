package middleware

import (
	"context"
	"net/http"
	"strings"

	"cane-backend/internal/auth"
	"cane-backend/internal/models"
	"cane-backend/pkg/utils"
)

// UserLookup loads the current state of a token's user
type UserLookup interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware resolves bearer tokens into sessions and enforces capabilities
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	users      UserLookup
}

// NewAuthMiddleware creates the auth middleware
//
// Parameters:
//   - jwtManager: verifies the bearer token
//   - users: reloads the user on every request so suspensions apply at once
//
// Returns:
//   - *AuthMiddleware: middleware providing Authenticate and RequireCapability
func NewAuthMiddleware(jwtManager *auth.JWTManager, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		users:      users,
	}
}

// Authenticate validates the bearer token and places an auth.Session on the
// request context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			utils.WriteError(w, utils.NewAppError(utils.ErrCodeUnauthorized, "authorization header required"))
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			utils.WriteError(w, utils.NewAppError(utils.ErrCodeUnauthorized, "invalid or expired token"))
			return
		}

		// role and activation come from the database so changes apply immediately
		user, err := m.users.Get(r.Context(), claims.UserID)
		if err != nil {
			if utils.IsNotFound(err) {
				utils.WriteError(w, utils.NewAppError(utils.ErrCodeUnauthorized, "user not found"))
				return
			}
			utils.WriteError(w, err)
			return
		}
		if !user.IsActive {
			utils.WriteError(w, utils.NewAppError(utils.ErrCodeForbidden, "account suspended, contact administrator"))
			return
		}

		role, err := auth.ParseRole(user.Role)
		if err != nil {
			utils.WriteError(w, utils.NewAppError(utils.ErrCodeForbidden, "account has an unknown role"))
			return
		}

		session := auth.Session{
			UserID: user.ID,
			Email:  user.Email,
			Name:   user.Name,
			Role:   role,
			MillID: user.MillID,
		}
		if sink, ok := r.Context().Value(sessionSinkKey{}).(*auth.Session); ok {
			*sink = session
		}
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
	})
}

// RequireCapability must run after Authenticate
func (m *AuthMiddleware) RequireCapability(capability auth.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := auth.SessionFrom(r.Context())
			if !ok {
				utils.WriteError(w, utils.NewAppError(utils.ErrCodeUnauthorized, "authentication required"))
				return
			}
			if err := session.Require(capability); err != nil {
				utils.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type sessionSinkKey struct{}

// withSessionSink lets an outer middleware see the session Authenticate builds
func withSessionSink(ctx context.Context, sink *auth.Session) context.Context {
	return context.WithValue(ctx, sessionSinkKey{}, sink)
}

// bearerToken reads "Authorization: Bearer <token>", or ?token= for websocket clients
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return r.URL.Query().Get("token")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
