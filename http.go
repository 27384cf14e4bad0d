package flix

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-flix/middleware/jwtware"
	"github.com/goliatone/go-print"
)

// SessionContextKey is the fiber locals key the interceptor stores the
// request session under.
const SessionContextKey = "session"

type RouteAuthenticator struct {
	auth                   Authenticator
	cfg                    Config
	cookieDuration         time.Duration
	extendedCookieDuration time.Duration
	Logger                 Logger
	AuthErrorHandler       func(c *fiber.Ctx, err error) error
	ErrorHandler           func(c *fiber.Ctx, err error) error
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := 24 * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	extendedCookieDuration := cookieDuration
	if cfg.GetExtendedTokenDuration() > 0 {
		extendedCookieDuration = time.Duration(cfg.GetExtendedTokenDuration()) * time.Hour
	}

	a := &RouteAuthenticator{
		cfg:                    cfg,
		auth:                   auther,
		Logger:                 defLogger{},
		cookieDuration:         cookieDuration,
		extendedCookieDuration: extendedCookieDuration,
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

func (a RouteAuthenticator) GetExtendedCookieDuration() time.Duration {
	return a.extendedCookieDuration
}

// Authenticate is the per-request interceptor. It never rejects: a request
// with no token, a bad token, an expired token, or a token whose account no
// longer resolves proceeds anonymously; a valid token with a live identity
// populates the request session. Mount it once, before any route policy
// that consults the session.
func (a *RouteAuthenticator) Authenticate() fiber.Handler {
	return jwtware.New(jwtware.Config{
		ErrorHandler: a.MakeClientRouteAuthErrorHandler(true),
		SigningKey: jwtware.SigningKey{
			Key:    []byte(a.cfg.GetSigningKey()),
			JWTAlg: a.cfg.GetSigningMethod(),
		},
		AuthScheme:          a.cfg.GetAuthScheme(),
		ContextKey:          a.cfg.GetContextKey(),
		TokenLookup:         a.cfg.GetTokenLookup(),
		TokenValidator:      a.middlewareValidator(),
		ValidationListeners: []jwtware.ValidationListener{a.storeSession},
		ContextEnricher:     a.enrichContext,
	})
}

// ProtectedRoute validates the token and rejects the request on failure.
func (a *RouteAuthenticator) ProtectedRoute(errorHandler func(*fiber.Ctx, error) error) fiber.Handler {
	return jwtware.New(jwtware.Config{
		ErrorHandler: errorHandler,
		SigningKey: jwtware.SigningKey{
			Key:    []byte(a.cfg.GetSigningKey()),
			JWTAlg: a.cfg.GetSigningMethod(),
		},
		AuthScheme:          a.cfg.GetAuthScheme(),
		ContextKey:          a.cfg.GetContextKey(),
		TokenLookup:         a.cfg.GetTokenLookup(),
		TokenValidator:      a.middlewareValidator(),
		ValidationListeners: []jwtware.ValidationListener{a.storeSession},
		ContextEnricher:     a.enrichContext,
	})
}

// RequireAuthenticated is the route level policy: anonymous requests get a
// 401. It relies on Authenticate having run earlier in the chain.
func (a *RouteAuthenticator) RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := GetSessionFromLocals(c, SessionContextKey); !ok {
			return a.AuthErrorHandler(c, ErrUnableToFindSession)
		}
		return c.Next()
	}
}

func (a *RouteAuthenticator) Login(c *fiber.Ctx, payload LoginPayload) error {
	var token string
	var err error

	duration := a.cookieDuration

	if payload.GetExtendedSession() {
		duration = a.extendedCookieDuration
		if extender, ok := a.auth.(interface {
			LoginWithDuration(ctx context.Context, identifier, password string, ttl time.Duration) (string, error)
		}); ok {
			token, err = extender.LoginWithDuration(c.UserContext(), payload.GetIdentifier(), payload.GetPassword(), duration)
		} else {
			token, err = a.auth.Login(c.UserContext(), payload.GetIdentifier(), payload.GetPassword())
		}
	} else {
		token, err = a.auth.Login(c.UserContext(), payload.GetIdentifier(), payload.GetPassword())
	}

	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return err
	}

	a.setCookieToken(c, token, duration)
	return nil
}

// Logout clears the session cookie. The token itself stays valid until it
// expires, there is no server side revocation.
func (a *RouteAuthenticator) Logout(c *fiber.Ctx) {
	a.cookieDel(c, a.cfg.GetContextKey())
}

func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler(optional bool) func(*fiber.Ctx, error) error {
	return func(c *fiber.Ctx, err error) error {
		var richErr *errors.Error

		if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsSignatureError(err) {
			richErr = ErrTokenSignature
		} else if IsMalformedError(err) {
			richErr = ErrTokenMalformed
		} else {
			richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
				WithCode(errors.CodeUnauthorized)
		}

		if optional {
			a.Logger.Debug("Optional auth failed, proceeding", "error", richErr.Message)
			return c.Next()
		}

		return a.ErrorHandler(c, richErr)
	}
}

func (a *RouteAuthenticator) setCookieToken(c *fiber.Ctx, val string, duration time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cfg.GetContextKey(),
		Value:    val,
		Path:     "/",
		Expires:  time.Now().Add(duration),
		MaxAge:   int(duration.Seconds()),
		HTTPOnly: true,
		Secure:   a.cfg.GetCookieSecure(),
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   a.cfg.GetCookieSecure(),
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) middlewareValidator() jwtware.TokenValidator {
	var validator TokenValidator

	if provider, ok := a.auth.(interface{ TokenService() TokenService }); ok {
		validator = provider.TokenService()
	} else {
		validator = NewTokenService(
			[]byte(a.cfg.GetSigningKey()),
			a.cfg.GetTokenExpiration(),
			a.cfg.GetIssuer(),
			a.cfg.GetAudience(),
			a.Logger,
		)
	}

	return middlewareValidator{validator: validator}
}

func (a *RouteAuthenticator) storeSession(c *fiber.Ctx, claims jwtware.AuthClaims) error {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return ErrUnableToMapClaims
	}

	session, err := sessionFromAuthClaims(authClaims)
	if err != nil {
		return err
	}

	// A valid signature is not proof the account still exists. Tokens
	// outlive registrations, so resolve the identity on every request.
	if _, err := a.auth.IdentityFromSession(c.UserContext(), session); err != nil {
		return err
	}

	c.Locals(SessionContextKey, Session(session))
	return nil
}

func (a *RouteAuthenticator) enrichContext(ctx context.Context, claims jwtware.AuthClaims) context.Context {
	if authClaims, ok := claims.(AuthClaims); ok {
		ctx = WithClaimsContext(ctx, authClaims)
		if session, err := sessionFromAuthClaims(authClaims); err == nil {
			ctx = WithSessionContext(ctx, session)
		}
	}
	return ctx
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Authentication required",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
	)

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": fiber.Map{
			"message":   "Authentication required",
			"text_code": richErr.TextCode,
		},
	})
}

func (a *RouteAuthenticator) defaultErrHandler(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return a.AuthErrorHandler(c, richErr)
	default:
		code := richErr.Code
		if code == 0 {
			code = fiber.StatusInternalServerError
		}
		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"message":   richErr.Message,
				"text_code": richErr.TextCode,
			},
		})
	}
}

type middlewareValidator struct {
	validator TokenValidator
}

func (v middlewareValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := v.validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
