package flix

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

type RatingsControllerRoutes struct {
	List    string
	Rate    string
	Get     string
	Average string
	Delete  string
}

// RatingsController exposes the per-user movie rating endpoints. All routes
// require an authenticated session.
type RatingsController struct {
	Logger Logger
	Repo   RepositoryManager
	Routes *RatingsControllerRoutes
	Auther *RouteAuthenticator
}

type RatingsControllerOption func(*RatingsController) *RatingsController

func WithRatingsControllerRepo(repo RepositoryManager) RatingsControllerOption {
	return func(c *RatingsController) *RatingsController {
		c.Repo = repo
		return c
	}
}

func WithRatingsControllerAuther(auther *RouteAuthenticator) RatingsControllerOption {
	return func(c *RatingsController) *RatingsController {
		c.Auther = auther
		return c
	}
}

func WithRatingsControllerLogger(logger Logger) RatingsControllerOption {
	return func(c *RatingsController) *RatingsController {
		c.Logger = logger
		return c
	}
}

func NewRatingsController(opts ...RatingsControllerOption) *RatingsController {
	c := &RatingsController{
		Logger: defLogger{},
		Routes: &RatingsControllerRoutes{
			List:    "/",
			Rate:    "/",
			Get:     "/:movie_id",
			Average: "/:movie_id/average",
			Delete:  "/:movie_id",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in ratings controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in ratings controller...")
	}

	return c
}

// RegisterRatingsRoutes mounts the ratings endpoints on the given router,
// usually an /api/ratings group.
func RegisterRatingsRoutes(app fiber.Router, opts ...RatingsControllerOption) *RatingsController {
	controller := NewRatingsController(opts...)

	requireAuth := controller.Auther.RequireAuthenticated()

	app.Get(controller.Routes.List, requireAuth, controller.List)
	app.Put(controller.Routes.Rate, requireAuth, controller.Rate)
	app.Get(controller.Routes.Average, requireAuth, controller.Average)
	app.Get(controller.Routes.Get, requireAuth, controller.Get)
	app.Delete(controller.Routes.Delete, requireAuth, controller.Delete)

	return controller
}

// RatingPayload is the rate-a-movie payload
type RatingPayload struct {
	MovieID string `form:"movie_id" json:"movie_id"`
	Score   int    `form:"score" json:"score"`
	Review  string `form:"review" json:"review"`
}

// Validate will validate the payload
func (r RatingPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MovieID, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Score, validation.Required, validation.Min(1), validation.Max(10)),
		validation.Field(&r.Review, validation.Length(0, 2000)),
	)
}

func (a *RatingsController) List(c *fiber.Ctx) error {
	session, ok := GetSessionFromLocals(c, SessionContextKey)
	if !ok {
		return fiber.ErrUnauthorized
	}

	userID, err := session.GetUserUUID()
	if err != nil {
		return fiber.ErrUnauthorized
	}

	records, err := a.Repo.Ratings().ListByUser(c.UserContext(), userID)
	if err != nil {
		a.Logger.Error("ratings list error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{"message": "Error listing ratings"},
		})
	}

	return c.JSON(fiber.Map{"ratings": records})
}

func (a *RatingsController) Rate(c *fiber.Ctx) error {
	session, ok := GetSessionFromLocals(c, SessionContextKey)
	if !ok {
		return fiber.ErrUnauthorized
	}

	userID, err := session.GetUserUUID()
	if err != nil {
		return fiber.ErrUnauthorized
	}

	payload := new(RatingPayload)
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

	record := &Rating{
		UserID:  userID,
		MovieID: payload.MovieID,
		Score:   payload.Score,
		Review:  payload.Review,
	}

	if err := a.Repo.Ratings().Rate(c.UserContext(), record); err != nil {
		a.Logger.Error("ratings rate error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{"message": "Error saving rating"},
		})
	}

	return c.JSON(fiber.Map{"rating": record})
}

func (a *RatingsController) Get(c *fiber.Ctx) error {
	session, ok := GetSessionFromLocals(c, SessionContextKey)
	if !ok {
		return fiber.ErrUnauthorized
	}

	userID, err := session.GetUserUUID()
	if err != nil {
		return fiber.ErrUnauthorized
	}

	movieID := c.Params("movie_id")
	if movieID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{"message": "movie_id is required"},
		})
	}

	record, err := a.Repo.Ratings().GetByUserAndMovie(c.UserContext(), userID, movieID)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": fiber.Map{"message": "Rating not found"},
			})
		}
		a.Logger.Error("ratings get error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{"message": "Error loading rating"},
		})
	}

	return c.JSON(fiber.Map{"rating": record})
}

// Average reports the movie's mean score across every user, not just the
// caller's own rating.
func (a *RatingsController) Average(c *fiber.Ctx) error {
	if _, ok := GetSessionFromLocals(c, SessionContextKey); !ok {
		return fiber.ErrUnauthorized
	}

	movieID := c.Params("movie_id")
	if movieID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{"message": "movie_id is required"},
		})
	}

	average, total, err := a.Repo.Ratings().AverageForMovie(c.UserContext(), movieID)
	if err != nil {
		a.Logger.Error("ratings average error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{"message": "Error computing average"},
		})
	}

	return c.JSON(fiber.Map{
		"movie_id": movieID,
		"average":  average,
		"count":    total,
	})
}

func (a *RatingsController) Delete(c *fiber.Ctx) error {
	session, ok := GetSessionFromLocals(c, SessionContextKey)
	if !ok {
		return fiber.ErrUnauthorized
	}

	userID, err := session.GetUserUUID()
	if err != nil {
		return fiber.ErrUnauthorized
	}

	movieID := c.Params("movie_id")
	if movieID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{"message": "movie_id is required"},
		})
	}

	if err := a.Repo.Ratings().Delete(c.UserContext(), userID, movieID); err != nil {
		if errors.IsNotFound(err) {
			return c.SendStatus(fiber.StatusNoContent)
		}
		a.Logger.Error("ratings delete error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{"message": "Error deleting rating"},
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
