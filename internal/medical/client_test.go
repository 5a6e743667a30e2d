package medical

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(ClientConfig{
		BaseURL:    url,
		QueryPath:  "/api/v1/medical/query",
		HealthPath: "/api/v1/health/check",
	}, logrus.New())
}

func TestClient_Query(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/v1/medical/query", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"query":"iron","user_id":"test-user","context":{}}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer":"x"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	resp, err := client.Query(context.Background(), "test-key", NewQueryRequest("iron", "test-user"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":"x"}`, string(resp))
}

func TestClient_QueryBodyIsExact(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = string(body)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Query(context.Background(), "t",
		NewQueryRequest("What vitamins interact with iron absorption?", "test-user"))
	require.NoError(t, err)
	assert.Equal(t,
		`{"query":"What vitamins interact with iron absorption?","user_id":"test-user","context":{}}`,
		got)
}

func TestClient_ErrorHandling(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"detail":"boom"}`))
			},
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail":"Invalid token"}`))
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>oops</html>"))
			},
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := newTestClient(server.URL)

			resp, err := client.Query(context.Background(), "k", NewQueryRequest("q", "u"))
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRequestFailed))
		})
	}
}

func TestClient_StatusInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Query(context.Background(), "k", NewQueryRequest("q", "u"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url).Query(context.Background(), "k", NewQueryRequest("q", "u"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequestFailed))
}

func TestClient_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(server.URL).Query(ctx, "k", NewQueryRequest("q", "u"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequestFailed))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestClient_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/api/v1/health/check", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	require.NoError(t, newTestClient(server.URL).Ping(context.Background()))
}
