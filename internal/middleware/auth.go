package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ibanking/backend/internal/services"
	"go.uber.org/zap"
)

type contextKey string

const (
	externalIDKey    contextKey = "externalID"
	emailVerifiedKey contextKey = "emailVerified"
)

// WithExternalID stores the identity-provider subject in ctx.
func WithExternalID(ctx context.Context, externalID string) context.Context {
	return context.WithValue(ctx, externalIDKey, externalID)
}

// ExternalIDFromContext returns the subject placed in ctx by Auth.
func ExternalIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(externalIDKey).(string)
	return id, ok && id != ""
}

var errNoSecret = errors.New("jwt secret key is not configured")

// Auth validates HMAC-signed bearer tokens. The subject is taken from the
// "sub" claim, falling back to "user_id". A non-empty issuer must match "iss".
// With an empty secretKey every request is rejected.
func Auth(secretKey, issuer string, log *zap.Logger) func(http.Handler) http.Handler {
	if secretKey == "" {
		log.Error("[AUTH] JWT secret key is empty, all bearer tokens will be rejected")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				services.SendErrorResponse(w, "Authorization header required", http.StatusUnauthorized, nil)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				services.SendErrorResponse(w, "Invalid authorization header format", http.StatusUnauthorized, nil)
				return
			}

			claims, err := validateToken(parts[1], secretKey, issuer)
			if err != nil {
				log.Debug("[AUTH] Rejected token", zap.Error(err))
				services.SendErrorResponse(w, "Invalid token", http.StatusUnauthorized, nil)
				return
			}

			subject := subjectOf(claims)
			if subject == "" {
				services.SendErrorResponse(w, "Invalid token", http.StatusUnauthorized, nil)
				return
			}

			verified, _ := claims["email_verified"].(bool)
			ctx := WithExternalID(r.Context(), subject)
			ctx = context.WithValue(ctx, emailVerifiedKey, verified)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireVerifiedEmail rejects callers whose token lacks a true
// "email_verified" claim. It must run after Auth.
func RequireVerifiedEmail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if verified, _ := r.Context().Value(emailVerifiedKey).(bool); !verified {
			services.SendErrorResponse(w, "Email address is not verified", http.StatusForbidden, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func validateToken(tokenString, secretKey, issuer string) (jwt.MapClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if secretKey == "" {
			return nil, errNoSecret
		}
		return []byte(secretKey), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	return claims, nil
}

func subjectOf(claims jwt.MapClaims) string {
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub
	}
	if userID, ok := claims["user_id"]; ok && userID != nil {
		return fmt.Sprintf("%v", userID)
	}
	return ""
}
