package flix

import (
	"context"
	"reflect"
	"time"
)

type Auther struct {
	provider        IdentityProvider
	signingKey      []byte
	tokenExpiration int
	extendedHours   int
	issuer          string
	audience        []string
	logger          Logger
	tokenService    TokenService
	tokenValidator  TokenValidator
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:        provider,
		signingKey:      []byte(opts.GetSigningKey()),
		tokenExpiration: opts.GetTokenExpiration(),
		extendedHours:   opts.GetExtendedTokenDuration(),
		audience:        opts.GetAudience(),
		issuer:          opts.GetIssuer(),
		logger:          defLogger{},
		tokenService:    tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	// Update the TokenService logger as well
	s.tokenService = NewTokenService(
		s.signingKey,
		s.tokenExpiration,
		s.issuer,
		s.audience,
		logger,
	)
	return s
}

// WithTokenValidator sets a custom token validator for externally issued tokens.
func (s *Auther) WithTokenValidator(validator TokenValidator) *Auther {
	s.tokenValidator = validator
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and returns a signed session token. Any
// credential failure surfaces as ErrMismatchedHashAndPassword so callers
// cannot distinguish an unknown account from a bad password.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	identity, err := s.verifyForLogin(ctx, identifier, password)
	if err != nil {
		return "", err
	}

	return s.tokenService.Generate(identity)
}

// LoginWithDuration behaves like Login but mints a token with an explicit
// lifetime, used for extended "remember me" sessions.
func (s *Auther) LoginWithDuration(ctx context.Context, identifier, password string, ttl time.Duration) (string, error) {
	identity, err := s.verifyForLogin(ctx, identifier, password)
	if err != nil {
		return "", err
	}

	token, _, err := MintScopedToken(s.tokenService, identity, ScopedTokenOptions{TTL: ttl})
	return token, err
}

// ExtendedTokenDuration is the lifetime extended sessions are minted with.
func (s *Auther) ExtendedTokenDuration() time.Duration {
	return time.Duration(s.extendedHours) * time.Hour
}

func (s *Auther) verifyForLogin(ctx context.Context, identifier, password string) (Identity, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return nil, ErrIdentityNotFound
	}

	return identity, nil
}

func (s *Auther) IdentityFromSession(ctx context.Context, session Session) (Identity, error) {
	identity, err := s.provider.FindIdentityByIdentifier(ctx, session.GetUserID())

	if err != nil {
		s.logger.Error("IdentityFromSession findidentity by identifier: %s", err)
		return nil, err
	}

	return identity, nil
}

func (s Auther) SessionFromToken(raw string) (Session, error) {
	validator := s.tokenValidator
	if validator == nil {
		validator = s.tokenService
	}

	claims, err := validator.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims", "error", err)
		return nil, err
	}

	return session, nil
}
