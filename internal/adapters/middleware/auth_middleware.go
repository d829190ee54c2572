package middleware

import (
	"context"
	"crypto/rsa"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
)

// RevocationChecker reports whether a bearer token was logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type AuthMiddleware struct {
	publicKey   *rsa.PublicKey
	revocations RevocationChecker
	logger      *slog.Logger
}

func NewAuthMiddleware(publicKey *rsa.PublicKey, revocations RevocationChecker, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		publicKey:   publicKey,
		revocations: revocations,
		logger:      logger,
	}
}

type contextKey string

const (
	UserIDKey    contextKey = "userID"
	RoleKey      contextKey = "role"
	TokenKey     contextKey = "token"
	ExpiresAtKey contextKey = "expiresAt"
)

// Authenticate verifies the RS256 bearer token and stores the caller's id,
// role, raw token and expiry in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			writeError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}
		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.publicKey, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			m.logger.DebugContext(r.Context(), "token rejected", "error", err)
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}

		userID, err := claims.GetSubject()
		if err != nil || userID == "" {
			writeError(w, http.StatusUnauthorized, "invalid token: missing user ID")
			return
		}

		rawRole, _ := claims["role"].(string)
		role, err := domain.ParseRole(strings.ToLower(rawRole))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token: missing role")
			return
		}

		exp, err := claims.GetExpirationTime()
		if err != nil || exp == nil {
			writeError(w, http.StatusUnauthorized, "invalid token: missing expiry")
			return
		}

		if m.revocations != nil {
			revoked, err := m.revocations.IsRevoked(r.Context(), tokenString)
			if err != nil {
				m.logger.ErrorContext(r.Context(), "revocation check failed", "error", err)
				writeError(w, http.StatusServiceUnavailable, "unable to verify token")
				return
			}
			if revoked {
				writeError(w, http.StatusUnauthorized, "token has been revoked")
				return
			}
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		ctx = context.WithValue(ctx, RoleKey, role)
		ctx = context.WithValue(ctx, TokenKey, tokenString)
		ctx = context.WithValue(ctx, ExpiresAtKey, exp.Time)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole lets the request through only when Authenticate stored one of
// roles in the context.
func (m *AuthMiddleware) RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}
			if !slices.Contains(roles, role) {
				m.logger.DebugContext(r.Context(), "role mismatch", "required", roles, "got", role)
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

func RoleFromContext(ctx context.Context) (domain.Role, bool) {
	role, ok := ctx.Value(RoleKey).(domain.Role)
	return role, ok
}

// TokenFromContext returns the raw bearer token and its expiry.
func TokenFromContext(ctx context.Context) (string, time.Time, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	if !ok {
		return "", time.Time{}, false
	}
	exp, _ := ctx.Value(ExpiresAtKey).(time.Time)
	return token, exp, true
}
