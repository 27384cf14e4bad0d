package flix_test

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	flix "github.com/goliatone/go-flix"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func TestUserContext(t *testing.T) {
	user := &flix.User{ID: uuid.New(), Email: "tester@example.com"}

	ctx := flix.WithContext(context.Background(), user)

	got, ok := flix.FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, user, got)

	_, ok = flix.FromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsContext(t *testing.T) {
	claims := &flix.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "tester@example.com"},
	}

	ctx := flix.WithClaimsContext(context.Background(), claims)

	got, ok := flix.GetClaims(ctx)
	assert.True(t, ok)
	assert.Equal(t, "tester@example.com", got.Subject())

	_, ok = flix.GetClaims(context.Background())
	assert.False(t, ok)
}

func TestSessionContext(t *testing.T) {
	session := &flix.SessionObject{UserID: "abc", Subject: "tester@example.com"}

	ctx := flix.WithSessionContext(context.Background(), session)

	got, ok := flix.GetSessionFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "abc", got.GetUserID())

	_, ok = flix.GetSessionFromContext(context.Background())
	assert.False(t, ok)
}

func TestSessionFromLocals(t *testing.T) {
	app := fiber.New()

	t.Run("session present", func(t *testing.T) {
		c := app.AcquireCtx(&fasthttp.RequestCtx{})
		defer app.ReleaseCtx(c)

		session := &flix.SessionObject{UserID: "abc"}
		c.Locals(flix.SessionContextKey, flix.Session(session))

		got, ok := flix.GetSessionFromLocals(c, flix.SessionContextKey)
		assert.True(t, ok)
		assert.Equal(t, "abc", got.GetUserID())
		assert.True(t, flix.IsAuthenticated(c, flix.SessionContextKey))
	})

	t.Run("empty key falls back to the default", func(t *testing.T) {
		c := app.AcquireCtx(&fasthttp.RequestCtx{})
		defer app.ReleaseCtx(c)

		session := &flix.SessionObject{UserID: "abc"}
		c.Locals(flix.SessionContextKey, flix.Session(session))

		_, ok := flix.GetSessionFromLocals(c, "")
		assert.True(t, ok)
	})

	t.Run("anonymous request", func(t *testing.T) {
		c := app.AcquireCtx(&fasthttp.RequestCtx{})
		defer app.ReleaseCtx(c)

		_, ok := flix.GetSessionFromLocals(c, flix.SessionContextKey)
		assert.False(t, ok)
		assert.False(t, flix.IsAuthenticated(c, flix.SessionContextKey))
	})

	t.Run("wrong type stored under the key", func(t *testing.T) {
		c := app.AcquireCtx(&fasthttp.RequestCtx{})
		defer app.ReleaseCtx(c)

		c.Locals(flix.SessionContextKey, "not-a-session")

		_, ok := flix.GetSessionFromLocals(c, flix.SessionContextKey)
		assert.False(t, ok)
	})
}
