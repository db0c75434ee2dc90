package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailgunTransport_Send(t *testing.T) {
	var received *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		received = r
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"<1@mg.example.com>","message":"Queued. Thank you."}`))
	}))
	defer server.Close()

	transport := NewMailgunTransport(server.URL+"/v3/mg.example.com/", "key-123", time.Second)
	err := transport.Send(context.Background(), Message{
		From:    "Santa <santa@example.com>",
		To:      []string{"alice@example.com"},
		Subject: "Secret Santa",
		HTML:    "<p>Bob</p>",
	})
	require.NoError(t, err)
	require.NotNil(t, received)

	assert.Equal(t, http.MethodPost, received.Method)
	assert.Equal(t, "/v3/mg.example.com/messages", received.URL.Path)

	user, pass, ok := received.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "api", user)
	assert.Equal(t, "key-123", pass)

	assert.Equal(t, "Santa <santa@example.com>", received.PostForm.Get("from"))
	assert.Equal(t, []string{"alice@example.com"}, received.PostForm["to"])
	assert.Equal(t, "Secret Santa", received.PostForm.Get("subject"))
	assert.Equal(t, "<p>Bob</p>", received.PostForm.Get("html"))
}

func TestMailgunTransport_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Forbidden\n"))
	}))
	defer server.Close()

	transport := NewMailgunTransport(server.URL, "wrong", time.Second)
	err := transport.Send(context.Background(), Message{To: []string{"a@example.com"}})
	require.Error(t, err)
	assert.Equal(t, "mail API returned 401 Unauthorized: Forbidden", err.Error())
}

func TestMailgunTransport_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	transport := NewMailgunTransport(url, "key", time.Second)
	err := transport.Send(context.Background(), Message{To: []string{"a@example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to call mail API")
}
