package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/config"
)

func TestClientSend(t *testing.T) {
	var got sendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"em_1"}`))
	}))
	defer srv.Close()

	client := NewClient(config.EmailConfig{BaseURL: srv.URL, APIKey: "key", From: "PEBEC <noreply@pebec.gov.ng>"}, zap.NewNop())
	err := client.Send(context.Background(), Message{To: "a@example.com", Subject: "Hi", HTML: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer key", auth)
	assert.Equal(t, []string{"a@example.com"}, got.To)
	assert.Equal(t, "PEBEC <noreply@pebec.gov.ng>", got.From)
	assert.Equal(t, "Hi", got.Subject)
}

func TestClientSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid to"}`))
	}))
	defer srv.Close()

	client := NewClient(config.EmailConfig{BaseURL: srv.URL, APIKey: "key"}, zap.NewNop())
	err := client.Send(context.Background(), Message{To: "bad", Subject: "Hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "invalid to")
}

func TestClientSendRequiresRecipient(t *testing.T) {
	client := NewClient(config.EmailConfig{BaseURL: "http://127.0.0.1:1", APIKey: "key"}, zap.NewNop())
	assert.Error(t, client.Send(context.Background(), Message{}))
}

func TestNewPicksSender(t *testing.T) {
	_, isLog := New(config.EmailConfig{}, zap.NewNop()).(*LogSender)
	assert.True(t, isLog)
	_, isClient := New(config.EmailConfig{BaseURL: "http://x", APIKey: "k"}, zap.NewNop()).(*Client)
	assert.True(t, isClient)
}

func TestRenderEscapes(t *testing.T) {
	out := Render("Status <update>", "Hello & welcome", []Field{
		{Label: "Note", Value: "<script>"},
		{Label: "Skipped", Value: ""},
	}, "https://pebec.gov.ng/t?a=1&b=2")
	assert.Contains(t, out, "Status &lt;update&gt;")
	assert.Contains(t, out, "Hello &amp; welcome")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "Skipped")
	assert.True(t, strings.Contains(out, "a=1&amp;b=2"))
}
