package jwtware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-flix/middleware/jwtware"
)

type stubClaims struct {
	subject string
	userID  string
}

func (c stubClaims) Subject() string { return c.subject }
func (c stubClaims) UserID() string  { return c.userID }

// stubValidator accepts a single raw token value
type stubValidator struct {
	accept string
	claims stubClaims
	err    error
}

func (v stubValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	if v.err != nil {
		return nil, v.err
	}
	if tokenString != v.accept {
		return nil, errors.New("token signature is invalid")
	}
	return v.claims, nil
}

func newTestApp(cfg jwtware.Config, handler fiber.Handler) *fiber.App {
	if cfg.SigningKey.Key == nil {
		cfg.SigningKey = jwtware.SigningKey{Key: []byte("test-secret"), JWTAlg: "HS256"}
	}
	app := fiber.New()
	app.Get("/", jwtware.New(cfg), handler)
	return app
}

func okHandler(c *fiber.Ctx) error {
	return c.SendString("ok")
}

func TestJWTWare_CookieExtraction(t *testing.T) {
	validator := stubValidator{
		accept: "valid-token",
		claims: stubClaims{subject: "tester@example.com", userID: "user-1"},
	}

	app := newTestApp(jwtware.Config{TokenValidator: validator}, okHandler)

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "jwt", Value: "valid-token"})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing cookie is a bad request by default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejected token is unauthorized by default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "jwt", Value: "forged-token"})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestJWTWare_HeaderExtraction(t *testing.T) {
	validator := stubValidator{
		accept: "valid-token",
		claims: stubClaims{subject: "tester@example.com", userID: "user-1"},
	}

	app := newTestApp(jwtware.Config{
		TokenValidator: validator,
		TokenLookup:    "header:Authorization",
	}, okHandler)

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer valid-token")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "valid-token")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestJWTWare_QueryExtraction(t *testing.T) {
	validator := stubValidator{
		accept: "valid-token",
		claims: stubClaims{subject: "tester@example.com", userID: "user-1"},
	}

	app := newTestApp(jwtware.Config{
		TokenValidator: validator,
		TokenLookup:    "query:auth_token",
	}, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/?auth_token=valid-token", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJWTWare_MultipleLookups(t *testing.T) {
	validator := stubValidator{
		accept: "valid-token",
		claims: stubClaims{subject: "tester@example.com", userID: "user-1"},
	}

	app := newTestApp(jwtware.Config{
		TokenValidator: validator,
		TokenLookup:    "header:Authorization,cookie:jwt",
	}, okHandler)

	t.Run("falls back to the cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "jwt", Value: "valid-token"})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestJWTWare_ClaimsInLocals(t *testing.T) {
	validator := stubValidator{
		accept: "valid-token",
		claims: stubClaims{subject: "tester@example.com", userID: "user-1"},
	}

	app := newTestApp(jwtware.Config{
		TokenValidator: validator,
		ContextKey:     "token_claims",
	}, func(c *fiber.Ctx) error {
		claims, ok := c.Locals("token_claims").(jwtware.AuthClaims)
		if !ok {
			return c.Status(fiber.StatusInternalServerError).SendString("claims missing")
		}
		return c.SendString(claims.Subject())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "valid-token"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJWTWare_ErrorHandler(t *testing.T) {
	validator := stubValidator{
		accept: "valid-token",
		claims: stubClaims{subject: "tester@example.com", userID: "user-1"},
	}

	var handled error
	app := newTestApp(jwtware.Config{
		TokenValidator: validator,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			handled = err
			return c.Next()
		},
	}, okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	// The error handler chose to proceed anyway
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.ErrorIs(t, handled, jwtware.ErrJWTMissingOrMalformed)
}

func TestJWTWare_Filter(t *testing.T) {
	validator := stubValidator{
		accept: "valid-token",
		claims: stubClaims{subject: "tester@example.com", userID: "user-1"},
	}

	app := newTestApp(jwtware.Config{
		TokenValidator: validator,
		Filter: func(c *fiber.Ctx) bool {
			return c.Query("skip") == "true"
		},
	}, okHandler)

	t.Run("filtered requests bypass the middleware", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?skip=true", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unfiltered requests are checked", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestJWTWare_ValidationListeners(t *testing.T) {
	validator := stubValidator{
		accept: "valid-token",
		claims: stubClaims{subject: "tester@example.com", userID: "user-1"},
	}

	t.Run("listeners observe validated claims", func(t *testing.T) {
		var seen jwtware.AuthClaims
		app := newTestApp(jwtware.Config{
			TokenValidator: validator,
			ValidationListeners: []jwtware.ValidationListener{
				func(c *fiber.Ctx, claims jwtware.AuthClaims) error {
					seen = claims
					return nil
				},
			},
		}, okHandler)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "jwt", Value: "valid-token"})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotNil(t, seen)
		assert.Equal(t, "tester@example.com", seen.Subject())
	})

	t.Run("listener errors reject the request", func(t *testing.T) {
		app := newTestApp(jwtware.Config{
			TokenValidator: validator,
			ValidationListeners: []jwtware.ValidationListener{
				func(c *fiber.Ctx, claims jwtware.AuthClaims) error {
					return errors.New("listener rejected")
				},
			},
		}, okHandler)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "jwt", Value: "valid-token"})

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestJWTWare_ContextEnricher(t *testing.T) {
	validator := stubValidator{
		accept: "valid-token",
		claims: stubClaims{subject: "tester@example.com", userID: "user-1"},
	}

	type ctxKey struct{}

	app := newTestApp(jwtware.Config{
		TokenValidator: validator,
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			return context.WithValue(ctx, ctxKey{}, claims.UserID())
		},
	}, func(c *fiber.Ctx) error {
		userID, _ := c.UserContext().Value(ctxKey{}).(string)
		if userID == "" {
			return c.Status(fiber.StatusInternalServerError).SendString("context not enriched")
		}
		return c.SendString(userID)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "valid-token"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJWTWare_ConfigPanics(t *testing.T) {
	t.Run("missing token validator", func(t *testing.T) {
		assert.Panics(t, func() {
			jwtware.New(jwtware.Config{
				SigningKey: jwtware.SigningKey{Key: []byte("k"), JWTAlg: "HS256"},
			})
		})
	})

	t.Run("missing keys", func(t *testing.T) {
		assert.Panics(t, func() {
			jwtware.New(jwtware.Config{
				TokenValidator: stubValidator{},
			})
		})
	})
}
