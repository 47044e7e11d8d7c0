package services

import (
	"context"
	"strings"
	"time"

	"github.com/ibanking/backend/internal/identity"
	"github.com/ibanking/backend/internal/models"
	"go.uber.org/zap"
)

// IdentityProvider is the external service that owns credentials.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (*identity.SignUpResponse, error)
	SignIn(ctx context.Context, email, password string) (*identity.SignInResponse, error)
	LookupUser(ctx context.Context, idToken string) (*identity.UserInfo, error)
	SendEmailVerification(ctx context.Context, idToken string) error
}

// SignUpRequest represents the registration request payload
type SignUpRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SignInRequest represents the login request payload
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignUpResponse struct {
	ID          string    `json:"id"`
	IDToken     string    `json:"idToken"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	DateCreated time.Time `json:"dateCreated"`
}

type SignInResponse struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	IDToken       string `json:"idToken"`
	EmailVerified bool   `json:"emailVerified"`
}

// AuthService registers users with the identity provider and mirrors them
// into the local user directory. The tokens it hands out are local session
// tokens, not the provider's ID tokens.
type AuthService struct {
	provider IdentityProvider
	sessions *SessionIssuer
	users    UserDirectory
	registry UserRegistry
	ids      IDGenerator
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(provider IdentityProvider, sessions *SessionIssuer, users UserDirectory, registry UserRegistry, ids IDGenerator, log *zap.Logger) *AuthService {
	return &AuthService{
		provider: provider,
		sessions: sessions,
		users:    users,
		registry: registry,
		ids:      ids,
		log:      log,
		now:      time.Now,
	}
}

// SignUp creates the provider identity, sends the verification mail and stores
// the local user keyed by the provider's localId.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error) {
	created, err := s.provider.SignUp(ctx, strings.ToLower(req.Email), req.Password)
	if err != nil {
		s.log.Info("[AUTH] Sign-up rejected by identity provider", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}

	if err := s.provider.SendEmailVerification(ctx, created.IDToken); err != nil {
		s.log.Error("[AUTH] Failed to send verification email", zap.String("email", created.Email), zap.Error(err))
		return nil, err
	}

	user := &models.User{
		ID:          s.ids.NewID(),
		ExternalID:  created.LocalID,
		Username:    req.Username,
		Email:       created.Email,
		DateCreated: s.now(),
	}
	if _, err := s.registry.SaveUser(ctx, user); err != nil {
		s.log.Error("[AUTH] Failed to store user", zap.String("external_id", created.LocalID), zap.Error(err))
		return nil, err
	}

	// The address cannot be verified yet, so this token only passes Auth.
	token, err := s.sessions.Issue(created.LocalID, false)
	if err != nil {
		s.log.Error("[AUTH] Failed to issue session token", zap.String("external_id", created.LocalID), zap.Error(err))
		return nil, err
	}

	s.log.Info("[AUTH] User registered", zap.String("user_id", user.ID.String()))
	return &SignUpResponse{
		ID:          user.ID.String(),
		IDToken:     token,
		Email:       user.Email,
		Username:    user.Username,
		DateCreated: user.DateCreated,
	}, nil
}

// SignIn authenticates against the provider and returns the local profile
// together with a session token carrying the provider's email_verified state.
func (s *AuthService) SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error) {
	signedIn, err := s.provider.SignIn(ctx, strings.ToLower(req.Email), req.Password)
	if err != nil {
		s.log.Info("[AUTH] Sign-in rejected by identity provider", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}

	user, err := resolveUser(ctx, s.users, signedIn.LocalID)
	if err != nil {
		return nil, err
	}

	info, err := s.provider.LookupUser(ctx, signedIn.IDToken)
	if err != nil {
		s.log.Error("[AUTH] Failed to look up provider account", zap.String("external_id", signedIn.LocalID), zap.Error(err))
		return nil, err
	}

	token, err := s.sessions.Issue(signedIn.LocalID, info.EmailVerified)
	if err != nil {
		s.log.Error("[AUTH] Failed to issue session token", zap.String("external_id", signedIn.LocalID), zap.Error(err))
		return nil, err
	}

	return &SignInResponse{
		Username:      user.Username,
		Email:         user.Email,
		IDToken:       token,
		EmailVerified: info.EmailVerified,
	}, nil
}
