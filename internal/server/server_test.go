package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"devconnect/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testEnv struct {
	app      *fiber.App
	srv      *Server
	users    *fakeUserRepo
	profiles *fakeProfileRepo
	posts    *fakePostRepo
}

// newTestEnv wires a Server onto in-memory stores. The metrics middleware is
// left unset so repeated app construction does not re-register Prometheus
// collectors.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newFakeUserRepo()
	profiles := newFakeProfileRepo()
	posts := newFakePostRepo()

	srv := &Server{
		config: &config.Config{
			JWTSecret:      "test-secret",
			AllowedOrigins: "*",
			Env:            "test",
		},
		userRepo:    users,
		profileRepo: profiles,
		postRepo:    posts,
	}

	app := fiber.New()
	srv.SetupRoutes(app)

	return &testEnv{app: app, srv: srv, users: users, profiles: profiles, posts: posts}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// registerUser creates an account through the API and returns its id and a
// usable bearer token.
func (e *testEnv) registerUser(t *testing.T, name, email string) (primitive.ObjectID, string) {
	t.Helper()

	resp := e.request(t, fiber.MethodPost, "/api/users", "", fiber.Map{
		"name":     name,
		"email":    email,
		"password": "hunter22",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)

	user, err := e.users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user.ID, body.Token
}

type fieldErrorsResponse struct {
	Errors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (r fieldErrorsResponse) fields() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Field)
	}
	return out
}

type msgResponse struct {
	Msg string `json:"msg"`
}
