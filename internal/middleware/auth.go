package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/review-service/internal/domain"
	"github.com/Abdurahmanit/review-service/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	identityKey contextKey = "authenticatedIdentity"
	tokenKey    contextKey = "bearerToken"
)

// Claims defines the structure of the JWT claims issued by the user service.
type Claims struct {
	UserID     string `json:"id"`
	Role       string `json:"role"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Avatar     string `json:"avatar"`
	IsVerified bool   `json:"isVerified"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Role   domain.Role
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == domain.RoleAdmin
}

// Authenticate verifies the bearer token. The role claim is optional: with no
// allowedRoles every verified caller passes, otherwise the role must be listed.
// Every rejection, including a role outside allowedRoles, is a 401.
func Authenticate(jwtSecret string, log *logger.Logger, allowedRoles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, role := range allowedRoles {
		allowed[role] = struct{}{}
	}
	log = log.Named("Auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := BearerToken(r)
			if tokenString == "" {
				log.Warn("Missing or malformed authorization header", zap.String("path", r.URL.Path))
				writeAuthError(w, "authorization token is not provided")
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				log.Warn("Token validation failed", zap.String("path", r.URL.Path), zap.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					writeAuthError(w, "token has expired")
					return
				}
				writeAuthError(w, "token is invalid")
				return
			}

			if claims.UserID == "" {
				log.Warn("Token carries no user id", zap.String("path", r.URL.Path))
				writeAuthError(w, "token is invalid")
				return
			}

			role := domain.Role(claims.Role)
			if len(allowed) > 0 {
				if _, ok := allowed[role]; !ok {
					log.Warn("User does not have required role",
						zap.String("path", r.URL.Path),
						zap.String("user_id", claims.UserID),
						zap.String("user_role", claims.Role))
					writeAuthError(w, "user role is not authorized for this action")
					return
				}
			}

			ctx := context.WithValue(r.Context(), identityKey, Identity{UserID: claims.UserID, Role: role})
			ctx = context.WithValue(ctx, tokenKey, tokenString)

			log.Debug("User authenticated", zap.String("user_id", claims.UserID), zap.String("role", claims.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the caller set by Authenticate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// TokenFromContext returns the verified raw token, or "".
func TokenFromContext(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey).(string); ok {
		return t
	}
	return ""
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
// Public routes use it to forward whatever the caller sent.
func BearerToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "UNAUTHORIZED",
		"message": message,
	})
}
