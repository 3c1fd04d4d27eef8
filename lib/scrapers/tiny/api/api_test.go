package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type staticTokens string

func (s staticTokens) AccessToken(ctx context.Context) (string, error) {
	return string(s), nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{
		BaseUrl: server.URL,
		Tokens:  staticTokens("tok-abc"),
	})
	require.NoError(t, err)
	return client
}

func TestSearchProductFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/produtos", r.URL.Path)
		require.Equal(t, "ABC123", r.URL.Query().Get("codigo"))
		require.Equal(t, "A", r.URL.Query().Get("situacao"))
		require.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"itens":[{"id":99,"sku":"ABC123"}]}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	result, err := client.SearchProduct(ctx, "ABC123")
	require.NoError(t, err)

	product, ok := result.First()
	require.True(t, ok)
	require.Equal(t, int64(99), product.Id)
}

func TestSearchProductNoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"itens":[]}`))
	})

	result, err := client.SearchProduct(context.Background(), "NOPE")
	require.NoError(t, err)

	_, ok := result.First()
	require.False(t, ok)
}

func TestSearchProductMalformedBodyIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	})

	result, err := client.SearchProduct(context.Background(), "ABC123")
	require.NoError(t, err)

	_, ok := result.First()
	require.False(t, ok)
}

func TestSearchProductErrorStatusIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"itens":[]}`))
	})

	result, err := client.SearchProduct(context.Background(), "ABC123")
	require.NoError(t, err)

	_, ok := result.First()
	require.False(t, ok)
}
