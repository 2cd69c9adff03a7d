package server

import (
	"fmt"
	"time"

	"devconnect/internal/models"
	"devconnect/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenExpiration = 24 * 7 * time.Hour

// invalidCredentials is the single body returned for every failed login.
// Unknown email and wrong password are indistinguishable to the caller.
var invalidCredentials = []models.FieldError{
	{Field: "email", Message: "Invalid credentials"},
}

// Register handles POST /api/users.
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if errs := validation.Struct(req); errs != nil {
		return models.RespondWithFieldErrors(c, errs)
	}

	existing, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return s.fail(c, err)
	}
	if existing != nil {
		return models.RespondWithFieldErrors(c, []models.FieldError{
			{Field: "email", Message: "User already exists"},
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return s.fail(c, err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Avatar:   models.GravatarURL(req.Email),
	}

	if err := s.userRepo.Create(c.Context(), user); err != nil {
		// A lost race on the unique email index surfaces as a validation error.
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == models.CodeValidation {
			return models.RespondWithFieldErrors(c, []models.FieldError{
				{Field: "email", Message: "User already exists"},
			})
		}
		return s.fail(c, err)
	}

	token, err := s.generateToken(user.ID.Hex())
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(fiber.Map{"token": token})
}

// Login handles POST /api/auth.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if errs := validation.Struct(req); errs != nil {
		return models.RespondWithFieldErrors(c, errs)
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return s.fail(c, err)
	}
	if user == nil {
		return models.RespondWithFieldErrors(c, invalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.RespondWithFieldErrors(c, invalidCredentials)
	}

	token, err := s.generateToken(user.ID.Hex())
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(fiber.Map{"token": token})
}

// GetCurrentUser handles GET /api/auth. The password hash is excluded by the
// model's serialization, not by the handler.
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.Context(), s.currentUserID(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(user)
}

// generateToken creates a signed JWT whose subject is the user's ObjectID hex.
func (s *Server) generateToken(userID string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iss": "devconnect-api",
		"exp": now.Add(tokenExpiration).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": s.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks.
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
