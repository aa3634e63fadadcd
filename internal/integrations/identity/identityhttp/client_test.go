package identityhttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BearBump/FoodTrack/internal/integrations/identity"
	"github.com/stretchr/testify/require"
)

func TestClient_ValidateUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "demo", r.Header.Get("X-API-Key"))
		switch r.URL.Path {
		case "/v1/users/1":
			w.WriteHeader(http.StatusOK)
		case "/v1/users/2":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "demo")

	require.NoError(t, c.ValidateUser(context.Background(), 1))

	err := c.ValidateUser(context.Background(), 2)
	require.ErrorIs(t, err, identity.ErrUnknownUser)

	err = c.ValidateUser(context.Background(), 3)
	require.Error(t, err)
	require.NotErrorIs(t, err, identity.ErrUnknownUser)
	require.Contains(t, err.Error(), "502")
}

func TestClient_ValidateUser_NonPositiveSkipsCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	err := New(srv.URL, "").ValidateUser(context.Background(), 0)
	require.ErrorIs(t, err, identity.ErrUnknownUser)
	require.False(t, called)
}

func TestClient_ValidateUser_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := New(url, "").ValidateUser(context.Background(), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "do request")
}
