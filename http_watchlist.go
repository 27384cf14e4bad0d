package flix

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

type WatchlistControllerRoutes struct {
	List    string
	Add     string
	Check   string
	Watched string
	Remove  string
}

// WatchlistController exposes the per-user watchlist endpoints. All routes
// require an authenticated session.
type WatchlistController struct {
	Logger Logger
	Repo   RepositoryManager
	Routes *WatchlistControllerRoutes
	Auther *RouteAuthenticator
}

type WatchlistControllerOption func(*WatchlistController) *WatchlistController

func WithWatchlistControllerRepo(repo RepositoryManager) WatchlistControllerOption {
	return func(c *WatchlistController) *WatchlistController {
		c.Repo = repo
		return c
	}
}

func WithWatchlistControllerAuther(auther *RouteAuthenticator) WatchlistControllerOption {
	return func(c *WatchlistController) *WatchlistController {
		c.Auther = auther
		return c
	}
}

func WithWatchlistControllerLogger(logger Logger) WatchlistControllerOption {
	return func(c *WatchlistController) *WatchlistController {
		c.Logger = logger
		return c
	}
}

func NewWatchlistController(opts ...WatchlistControllerOption) *WatchlistController {
	c := &WatchlistController{
		Logger: defLogger{},
		Routes: &WatchlistControllerRoutes{
			List:    "/",
			Add:     "/",
			Check:   "/check/:movie_id",
			Watched: "/:movie_id/watched",
			Remove:  "/:movie_id",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in watchlist controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in watchlist controller...")
	}

	return c
}

// RegisterWatchlistRoutes mounts the watchlist endpoints on the given
// router, usually an /api/watchlist group.
func RegisterWatchlistRoutes(app fiber.Router, opts ...WatchlistControllerOption) *WatchlistController {
	controller := NewWatchlistController(opts...)

	requireAuth := controller.Auther.RequireAuthenticated()

	app.Get(controller.Routes.Check, requireAuth, controller.Check)
	app.Get(controller.Routes.List, requireAuth, controller.List)
	app.Post(controller.Routes.Add, requireAuth, controller.Add)
	app.Post(controller.Routes.Watched, requireAuth, controller.MarkWatched)
	app.Delete(controller.Routes.Remove, requireAuth, controller.Remove)

	return controller
}

// WatchlistAddPayload is the add-to-watchlist payload
type WatchlistAddPayload struct {
	MovieID string `form:"movie_id" json:"movie_id"`
	Title   string `form:"title" json:"title"`
	Genre   string `form:"genre" json:"genre"`
}

// Validate will validate the payload
func (r WatchlistAddPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MovieID, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Title, validation.Length(0, 500)),
		validation.Field(&r.Genre, validation.Length(0, 100)),
	)
}

func (a *WatchlistController) List(c *fiber.Ctx) error {
	session, ok := GetSessionFromLocals(c, SessionContextKey)
	if !ok {
		return fiber.ErrUnauthorized
	}

	userID, err := session.GetUserUUID()
	if err != nil {
		return fiber.ErrUnauthorized
	}

	records, err := a.Repo.Watchlist().ListByUser(c.UserContext(), userID)
	if err != nil {
		a.Logger.Error("watchlist list error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{"message": "Error listing watchlist"},
		})
	}

	return c.JSON(fiber.Map{"watchlist": records})
}

func (a *WatchlistController) Add(c *fiber.Ctx) error {
	session, ok := GetSessionFromLocals(c, SessionContextKey)
	if !ok {
		return fiber.ErrUnauthorized
	}

	userID, err := session.GetUserUUID()
	if err != nil {
		return fiber.ErrUnauthorized
	}

	payload := new(WatchlistAddPayload)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{"message": "Error parsing body"},
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": fiber.Map{
				"message":    "Error validating payload",
				"validation": FormatValidationErrorToMap(err),
			},
		})
	}

	record := &WatchlistItem{
		UserID:  userID,
		MovieID: payload.MovieID,
		Title:   payload.Title,
		Genre:   payload.Genre,
	}

	if err := a.Repo.Watchlist().Add(c.UserContext(), record); err != nil {
		a.Logger.Error("watchlist add error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{"message": "Error adding to watchlist"},
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": record})
}

func (a *WatchlistController) Check(c *fiber.Ctx) error {
	session, ok := GetSessionFromLocals(c, SessionContextKey)
	if !ok {
		return fiber.ErrUnauthorized
	}

	userID, err := session.GetUserUUID()
	if err != nil {
		return fiber.ErrUnauthorized
	}

	movieID := c.Params("movie_id")

	found, err := a.Repo.Watchlist().Contains(c.UserContext(), userID, movieID)
	if err != nil {
		a.Logger.Error("watchlist check error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{"message": "Error checking watchlist"},
		})
	}

	return c.JSON(fiber.Map{"movie_id": movieID, "in_watchlist": found})
}

func (a *WatchlistController) MarkWatched(c *fiber.Ctx) error {
	session, ok := GetSessionFromLocals(c, SessionContextKey)
	if !ok {
		return fiber.ErrUnauthorized
	}

	userID, err := session.GetUserUUID()
	if err != nil {
		return fiber.ErrUnauthorized
	}

	movieID := c.Params("movie_id")

	if err := a.Repo.Watchlist().MarkWatched(c.UserContext(), userID, movieID); err != nil {
		if errors.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": fiber.Map{"message": "Watchlist item not found"},
			})
		}
		a.Logger.Error("watchlist watched error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{"message": "Error updating watchlist"},
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

func (a *WatchlistController) Remove(c *fiber.Ctx) error {
	session, ok := GetSessionFromLocals(c, SessionContextKey)
	if !ok {
		return fiber.ErrUnauthorized
	}

	userID, err := session.GetUserUUID()
	if err != nil {
		return fiber.ErrUnauthorized
	}

	movieID := c.Params("movie_id")

	if err := a.Repo.Watchlist().Remove(c.UserContext(), userID, movieID); err != nil {
		a.Logger.Error("watchlist remove error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{"message": "Error removing from watchlist"},
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
