package server

import (
	"time"

	"devconnect/internal/models"
	"devconnect/internal/repository"
	"devconnect/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UpsertProfile handles POST /api/profile. It creates the caller's profile on
// first use and merges field updates afterwards; experience and education are
// managed through their own endpoints.
func (s *Server) UpsertProfile(c *fiber.Ctx) error {
	var req struct {
		Company        string   `json:"company"`
		Website        string   `json:"website" validate:"omitempty,url"`
		Location       string   `json:"location"`
		Status         string   `json:"status" validate:"required"`
		Skills         []string `json:"skills" validate:"required,min=1,dive,required"`
		Bio            string   `json:"bio"`
		GithubUsername string   `json:"githubUsername"`
		Youtube        string   `json:"youtube"`
		Twitter        string   `json:"twitter"`
		Facebook       string   `json:"facebook"`
		Linkedin       string   `json:"linkedin"`
		Instagram      string   `json:"instagram"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if errs := validation.Struct(req); errs != nil {
		return models.RespondWithFieldErrors(c, errs)
	}

	fields := repository.ProfileFields{
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Status:         req.Status,
		Skills:         req.Skills,
		Bio:            req.Bio,
		GithubUsername: req.GithubUsername,
	}
	if req.Youtube != "" || req.Twitter != "" || req.Facebook != "" ||
		req.Linkedin != "" || req.Instagram != "" {
		fields.Social = &models.SocialLinks{
			Youtube:   req.Youtube,
			Twitter:   req.Twitter,
			Facebook:  req.Facebook,
			Linkedin:  req.Linkedin,
			Instagram: req.Instagram,
		}
	}

	profile, err := s.profileRepo.Upsert(c.Context(), s.currentUserID(c), fields)
	if err != nil {
		return s.fail(c, err)
	}

	if err := s.attachOwners(c, profile); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(profile)
}

// GetMyProfile handles GET /api/profile/me.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileRepo.GetByUserID(c.Context(), s.currentUserID(c))
	if err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == models.CodeNotFound {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("There is no profile for this user"))
		}
		return s.fail(c, err)
	}

	if err := s.attachOwners(c, profile); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(profile)
}

// GetAllProfiles handles GET /api/profile.
func (s *Server) GetAllProfiles(c *fiber.Ctx) error {
	profiles, err := s.profileRepo.List(c.Context())
	if err != nil {
		return s.fail(c, err)
	}

	if err := s.attachOwners(c, profiles...); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(profiles)
}

// GetProfileByUser handles GET /api/profile/user/:user_id. An ill-formed id is
// reported the same way as an unknown one.
func (s *Server) GetProfileByUser(c *fiber.Ctx) error {
	userID, err := s.parseObjectID(c, "user_id", "Profile not found")
	if err != nil {
		return nil
	}

	profile, err := s.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == models.CodeNotFound {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Profile not found"))
		}
		return s.fail(c, err)
	}

	if err := s.attachOwners(c, profile); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(profile)
}

// DeleteAccount handles DELETE /api/profile. It removes the caller's posts,
// profile, and user record in that order so a partial failure never leaves
// content pointing at a deleted account.
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	userID := s.currentUserID(c)

	if err := s.postRepo.DeleteByUser(c.Context(), userID); err != nil {
		return s.fail(c, err)
	}
	if err := s.profileRepo.Delete(c.Context(), userID); err != nil {
		return s.fail(c, err)
	}
	if err := s.userRepo.Delete(c.Context(), userID); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(fiber.Map{"msg": "User deleted"})
}

// AddExperience handles PUT /api/profile/experience.
func (s *Server) AddExperience(c *fiber.Ctx) error {
	var req struct {
		Title       string     `json:"title" validate:"required"`
		Company     string     `json:"company" validate:"required"`
		Location    string     `json:"location"`
		From        time.Time  `json:"from" validate:"required"`
		To          *time.Time `json:"to"`
		Current     bool       `json:"current"`
		Description string     `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if errs := validation.Struct(req); errs != nil {
		return models.RespondWithFieldErrors(c, errs)
	}

	exp := models.Experience{
		ID:          primitive.NewObjectID(),
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        req.From,
		To:          req.To,
		Current:     req.Current,
		Description: req.Description,
	}

	profile, err := s.profileRepo.AddExperience(c.Context(), s.currentUserID(c), exp)
	if err != nil {
		return s.fail(c, err)
	}

	if err := s.attachOwners(c, profile); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(profile)
}

// DeleteExperience handles DELETE /api/profile/experience/:exp_id.
func (s *Server) DeleteExperience(c *fiber.Ctx) error {
	expID, err := s.parseObjectID(c, "exp_id", "Experience not found")
	if err != nil {
		return nil
	}

	profile, err := s.profileRepo.RemoveExperience(c.Context(), s.currentUserID(c), expID)
	if err != nil {
		return s.fail(c, err)
	}

	if err := s.attachOwners(c, profile); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(profile)
}

// AddEducation handles PUT /api/profile/education.
func (s *Server) AddEducation(c *fiber.Ctx) error {
	var req struct {
		School       string     `json:"school" validate:"required"`
		Degree       string     `json:"degree" validate:"required"`
		FieldOfStudy string     `json:"fieldOfStudy" validate:"required"`
		From         time.Time  `json:"from" validate:"required"`
		To           *time.Time `json:"to"`
		Current      bool       `json:"current"`
		Description  string     `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if errs := validation.Struct(req); errs != nil {
		return models.RespondWithFieldErrors(c, errs)
	}

	edu := models.Education{
		ID:           primitive.NewObjectID(),
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         req.From,
		To:           req.To,
		Current:      req.Current,
		Description:  req.Description,
	}

	profile, err := s.profileRepo.AddEducation(c.Context(), s.currentUserID(c), edu)
	if err != nil {
		return s.fail(c, err)
	}

	if err := s.attachOwners(c, profile); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(profile)
}

// DeleteEducation handles DELETE /api/profile/education/:edu_id.
func (s *Server) DeleteEducation(c *fiber.Ctx) error {
	eduID, err := s.parseObjectID(c, "edu_id", "Education not found")
	if err != nil {
		return nil
	}

	profile, err := s.profileRepo.RemoveEducation(c.Context(), s.currentUserID(c), eduID)
	if err != nil {
		return s.fail(c, err)
	}

	if err := s.attachOwners(c, profile); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(profile)
}
