package server

import (
	"context"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodPost, "/api/users", "", fiber.Map{
		"name":     "Ada Lovelace",
		"email":    "ada@example.com",
		"password": "babbage1",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.Token)

	user, err := env.users.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.True(t, strings.HasPrefix(user.Avatar, "https://www.gravatar.com/avatar/"))

	// The stored credential is a bcrypt hash, never the plaintext.
	assert.NotEqual(t, "babbage1", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("babbage1")))
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing fields", func(t *testing.T) {
		resp := env.request(t, fiber.MethodPost, "/api/users", "", fiber.Map{})
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var body fieldErrorsResponse
		decodeBody(t, resp, &body)
		assert.ElementsMatch(t, []string{"name", "email", "password"}, body.fields())
	})

	t.Run("invalid email", func(t *testing.T) {
		resp := env.request(t, fiber.MethodPost, "/api/users", "", fiber.Map{
			"name":     "Ada",
			"email":    "not-an-email",
			"password": "babbage1",
		})
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var body fieldErrorsResponse
		decodeBody(t, resp, &body)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "email", body.Errors[0].Field)
		assert.Equal(t, "Please include a valid email", body.Errors[0].Message)
	})

	t.Run("short password", func(t *testing.T) {
		resp := env.request(t, fiber.MethodPost, "/api/users", "", fiber.Map{
			"name":     "Ada",
			"email":    "ada@example.com",
			"password": "short",
		})
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var body fieldErrorsResponse
		decodeBody(t, resp, &body)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "password", body.Errors[0].Field)
	})
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "Ada", "ada@example.com")

	resp := env.request(t, fiber.MethodPost, "/api/users", "", fiber.Map{
		"name":     "Imposter",
		"email":    "ada@example.com",
		"password": "password",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body fieldErrorsResponse
	decodeBody(t, resp, &body)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "email", body.Errors[0].Field)
	assert.Equal(t, "User already exists", body.Errors[0].Message)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "Ada", "ada@example.com")

	resp := env.request(t, fiber.MethodPost, "/api/auth", "", fiber.Map{
		"email":    "ada@example.com",
		"password": "hunter22",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)

	// The issued token is accepted by the auth guard.
	me := env.request(t, fiber.MethodGet, "/api/auth", body.Token, nil)
	assert.Equal(t, fiber.StatusOK, me.StatusCode)
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "Ada", "ada@example.com")

	unknown := env.request(t, fiber.MethodPost, "/api/auth", "", fiber.Map{
		"email":    "nobody@example.com",
		"password": "hunter22",
	})
	wrongPassword := env.request(t, fiber.MethodPost, "/api/auth", "", fiber.Map{
		"email":    "ada@example.com",
		"password": "wrong-password",
	})

	require.Equal(t, fiber.StatusBadRequest, unknown.StatusCode)
	require.Equal(t, fiber.StatusBadRequest, wrongPassword.StatusCode)

	// Unknown account and wrong password are indistinguishable.
	assert.JSONEq(t, readBody(t, unknown), readBody(t, wrongPassword))
}

func TestGetCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.registerUser(t, "Ada", "ada@example.com")

	resp := env.request(t, fiber.MethodGet, "/api/auth", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	assert.Contains(t, body, userID.Hex())
	assert.Contains(t, body, "ada@example.com")
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "$2a$") // bcrypt hash prefix
}

func TestAuthGuard(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing header", func(t *testing.T) {
		resp := env.request(t, fiber.MethodGet, "/api/auth", "", nil)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		var body msgResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "Authorization header required", body.Msg)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp := env.request(t, fiber.MethodGet, "/api/auth", "not.a.jwt", nil)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		var body msgResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "Token is not valid", body.Msg)
	})

	t.Run("token signed with wrong secret", func(t *testing.T) {
		forged := *env.srv.config
		forged.JWTSecret = "wrong-secret"
		other := &Server{config: &forged}

		token, err := other.generateToken("64f000000000000000000001")
		require.NoError(t, err)

		resp := env.request(t, fiber.MethodGet, "/api/auth", token, nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
