package auth

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/catalog"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	token, expires, err := tm.GenerateToken("agent-7", domain.UserRoleAgent)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expires, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "agent-7", claims.Subject)
	assert.Equal(t, domain.UserRoleAgent, claims.Role)

	_, err = NewTokenManager("other", time.Minute).ParseToken(token)
	assert.Error(t, err)

	_, _, err = tm.GenerateToken("", domain.UserRoleAgent)
	assert.Error(t, err)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	tm.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := tm.GenerateToken("agent-7", domain.UserRoleAgent)
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestMiddlewareAndRoles(t *testing.T) {
	users := catalog.New([]domain.User{
		{ID: "agent-7", FirstName: "Alex", Role: domain.UserRoleAgent},
		{ID: "actor-1", FirstName: "Dana", Role: domain.UserRoleRequester},
	}, nil)
	tm := NewTokenManager("secret", time.Minute)
	mw := NewAuthMiddleware(tm, users)

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.SendStatus(fiberErr.Code)
		}
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	app.Get("/me", mw.Handle, RequireAnyRole(), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.ActorID())
	})
	app.Post("/agent", mw.Handle, RequireAgent(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})

	bearer := func(userID string, role domain.UserRole) string {
		token, _, err := tm.GenerateToken(userID, role)
		require.NoError(t, err)
		return "Bearer " + token
	}

	cases := []struct {
		name   string
		method string
		path   string
		auth   string
		status int
	}{
		{"missing header", http.MethodGet, "/me", "", http.StatusUnauthorized},
		{"bad scheme", http.MethodGet, "/me", "Basic abc", http.StatusUnauthorized},
		{"unknown user", http.MethodGet, "/me", bearer("ghost", domain.UserRoleAdmin), http.StatusUnauthorized},
		{"requester ok", http.MethodGet, "/me", bearer("actor-1", domain.UserRoleRequester), http.StatusOK},
		{"requester claiming admin", http.MethodPost, "/agent", bearer("actor-1", domain.UserRoleAdmin), http.StatusForbidden},
		{"agent ok", http.MethodPost, "/agent", bearer("agent-7", domain.UserRoleAgent), http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.status == http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, "actor-1", string(body))
			}
		})
	}
}
