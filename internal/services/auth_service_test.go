package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ibanking/backend/internal/identity"
	"github.com/ibanking/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sessionSecret = "session-secret"

type authFixture struct {
	provider *MockIdentityProvider
	users    *MockUserDirectory
	registry *MockUserRegistry
	service  *AuthService
}

func newAuthFixture(ids IDGenerator) *authFixture {
	f := &authFixture{
		provider: new(MockIdentityProvider),
		users:    new(MockUserDirectory),
		registry: new(MockUserRegistry),
	}
	sessions, _ := NewSessionIssuer(sessionSecret, "", time.Hour)
	f.service = NewAuthService(f.provider, sessions, f.users, f.registry, ids, zap.NewNop())
	f.service.now = func() time.Time { return fixedNow }
	return f
}

func sessionClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(sessionSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	return claims
}

func TestAuthService_SignUp(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	req := SignUpRequest{Username: "alice", Email: "Alice@Example.com", Password: "secret1"}

	t.Run("registers locally after provider sign-up", func(t *testing.T) {
		f := newAuthFixture(&fixedIDs{ids: []uuid.UUID{userID}})
		f.provider.On("SignUp", mock.Anything, "alice@example.com", "secret1").
			Return(&identity.SignUpResponse{IDToken: "tok", Email: "alice@example.com", LocalID: "ext-1"}, nil)
		f.provider.On("SendEmailVerification", mock.Anything, "tok").Return(nil)
		f.registry.On("SaveUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.ID == userID && u.ExternalID == "ext-1" && u.Username == "alice" &&
				u.Email == "alice@example.com" && u.DateCreated.Equal(fixedNow)
		})).Return(int64(1), nil)

		resp, err := f.service.SignUp(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, userID.String(), resp.ID)
		assert.NotEqual(t, "tok", resp.IDToken)
		claims := sessionClaims(t, resp.IDToken)
		assert.Equal(t, "ext-1", claims["sub"])
		assert.Equal(t, false, claims["email_verified"])
		assert.Equal(t, "alice", resp.Username)
		f.provider.AssertExpectations(t)
		f.registry.AssertExpectations(t)
	})

	t.Run("provider rejection stops registration", func(t *testing.T) {
		f := newAuthFixture(RandomIDs{})
		f.provider.On("SignUp", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &identity.Error{Code: 400, Message: "EMAIL_EXISTS"})

		_, err := f.service.SignUp(ctx, req)
		assert.EqualError(t, err, "EMAIL_EXISTS")
		f.provider.AssertNotCalled(t, "SendEmailVerification", mock.Anything, mock.Anything)
		f.registry.AssertNotCalled(t, "SaveUser", mock.Anything, mock.Anything)
	})

	t.Run("verification mail failure", func(t *testing.T) {
		f := newAuthFixture(RandomIDs{})
		f.provider.On("SignUp", mock.Anything, mock.Anything, mock.Anything).
			Return(&identity.SignUpResponse{IDToken: "tok", LocalID: "ext-1"}, nil)
		f.provider.On("SendEmailVerification", mock.Anything, "tok").Return(assert.AnError)

		_, err := f.service.SignUp(ctx, req)
		assert.ErrorIs(t, err, assert.AnError)
		f.registry.AssertNotCalled(t, "SaveUser", mock.Anything, mock.Anything)
	})
}

func TestAuthService_SignIn(t *testing.T) {
	ctx := context.Background()
	req := SignInRequest{Email: "alice@example.com", Password: "secret1"}

	t.Run("returns local profile with session token", func(t *testing.T) {
		f := newAuthFixture(RandomIDs{})
		f.provider.On("SignIn", mock.Anything, "alice@example.com", "secret1").
			Return(&identity.SignInResponse{IDToken: "tok", LocalID: "ext-1"}, nil)
		f.provider.On("LookupUser", mock.Anything, "tok").
			Return(&identity.UserInfo{LocalID: "ext-1", EmailVerified: true}, nil)
		f.users.On("GetUser", mock.Anything, "ext-1").Return(testUser, nil)

		resp, err := f.service.SignIn(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "alice", resp.Username)
		assert.True(t, resp.EmailVerified)
		claims := sessionClaims(t, resp.IDToken)
		assert.Equal(t, "ext-1", claims["sub"])
		assert.Equal(t, true, claims["email_verified"])
	})

	t.Run("unverified provider account", func(t *testing.T) {
		f := newAuthFixture(RandomIDs{})
		f.provider.On("SignIn", mock.Anything, mock.Anything, mock.Anything).
			Return(&identity.SignInResponse{IDToken: "tok", LocalID: "ext-1"}, nil)
		f.provider.On("LookupUser", mock.Anything, "tok").
			Return(&identity.UserInfo{LocalID: "ext-1"}, nil)
		f.users.On("GetUser", mock.Anything, "ext-1").Return(testUser, nil)

		resp, err := f.service.SignIn(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, false, sessionClaims(t, resp.IDToken)["email_verified"])
	})

	t.Run("lookup failure", func(t *testing.T) {
		f := newAuthFixture(RandomIDs{})
		f.provider.On("SignIn", mock.Anything, mock.Anything, mock.Anything).
			Return(&identity.SignInResponse{IDToken: "tok", LocalID: "ext-1"}, nil)
		f.provider.On("LookupUser", mock.Anything, "tok").Return(nil, assert.AnError)
		f.users.On("GetUser", mock.Anything, "ext-1").Return(testUser, nil)

		_, err := f.service.SignIn(ctx, req)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("provider account without local user", func(t *testing.T) {
		f := newAuthFixture(RandomIDs{})
		f.provider.On("SignIn", mock.Anything, mock.Anything, mock.Anything).
			Return(&identity.SignInResponse{IDToken: "tok", LocalID: "orphan"}, nil)
		f.users.On("GetUser", mock.Anything, "orphan").Return(nil, nil)

		_, err := f.service.SignIn(ctx, req)
		assert.True(t, IsNotFound(err))
		f.provider.AssertNotCalled(t, "LookupUser", mock.Anything, mock.Anything)
		assert.EqualError(t, err, "User with id: orphan is not registered")
	})
}
