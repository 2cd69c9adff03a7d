package server

import (
	"errors"
	"log/slog"

	"devconnect/internal/middleware"
	"devconnect/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// currentUserID returns the authenticated user's id set by the auth guard.
func (s *Server) currentUserID(c *fiber.Ctx) primitive.ObjectID {
	return c.Locals(middleware.UserIDLocal).(primitive.ObjectID)
}

// parseObjectID extracts a route parameter as an ObjectID. A syntactically
// invalid id gets the same 404 body as a missing resource; callers should
// check: if err != nil { return nil }.
func (s *Server) parseObjectID(c *fiber.Ctx, param, missing string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params(param))
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError(missing))
		return primitive.NilObjectID, errResponseWritten
	}
	return id, nil
}

// fail converts an error into the appropriate HTTP response. Unclassified
// errors become a generic 500 with the detail logged server-side only.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "handler error",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		return models.RespondWithError(c, status, models.NewInternalError(err))
	}
	return models.RespondWithError(c, status, err)
}

// attachOwners joins the minimal owner fields (name, avatar) onto profiles.
func (s *Server) attachOwners(c *fiber.Ctx, profiles ...*models.Profile) error {
	ids := make([]primitive.ObjectID, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}

	users, err := s.userRepo.GetByIDs(c.Context(), ids)
	if err != nil {
		return err
	}

	for _, p := range profiles {
		if u, ok := users[p.UserID]; ok {
			p.Owner = &models.ProfileOwner{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
		}
	}
	return nil
}
