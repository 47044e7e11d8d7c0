package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ibanking/backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func echoSubject() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := ExternalIDFromContext(r.Context())
		w.Write([]byte(id))
	})
}

func TestAuth(t *testing.T) {
	handler := Auth(testSecret, "", zap.NewNop())(echoSubject())

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "sub claim",
			header:     "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "ext-1"}),
			wantStatus: http.StatusOK,
			wantBody:   "ext-1",
		},
		{
			name:       "user_id fallback",
			header:     "Bearer " + signToken(t, testSecret, jwt.MapClaims{"user_id": "ext-2"}),
			wantStatus: http.StatusOK,
			wantBody:   "ext-2",
		},
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong secret",
			header:     "Bearer " + signToken(t, "other", jwt.MapClaims{"sub": "ext-1"}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no subject",
			header:     "Bearer " + signToken(t, testSecret, jwt.MapClaims{"email": "a@b.c"}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired",
			header:     "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "ext-1", "exp": 1}),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, w.Body.String())
				return
			}
			var resp services.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestAuth_Issuer(t *testing.T) {
	handler := Auth(testSecret, "ibanking", zap.NewNop())(echoSubject())

	for name, tc := range map[string]struct {
		iss  string
		want int
	}{
		"matching issuer": {iss: "ibanking", want: http.StatusOK},
		"foreign issuer":  {iss: "someone-else", want: http.StatusUnauthorized},
	} {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.MapClaims{"sub": "ext-1", "iss": tc.iss}))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestAuth_EmptySecret(t *testing.T) {
	handler := Auth("", "", zap.NewNop())(RequireVerifiedEmail(echoSubject()))

	for name, secret := range map[string]string{
		"token signed with empty key": "",
		"token signed with real key":  testSecret,
	} {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/v1/transfers/makeTransfer", nil)
			r.Header.Set("Authorization", "Bearer "+signToken(t, secret, jwt.MapClaims{"sub": "victim", "email_verified": true}))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireVerifiedEmail(t *testing.T) {
	handler := Auth(testSecret, "", zap.NewNop())(RequireVerifiedEmail(echoSubject()))

	t.Run("verified", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.MapClaims{"sub": "ext-1", "email_verified": true}))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unverified", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.MapClaims{"sub": "ext-1", "email_verified": false}))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("claim absent", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.MapClaims{"sub": "ext-1"}))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
