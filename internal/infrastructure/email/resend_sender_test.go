package email

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	billingapp "github.com/invoicing/backend/internal/application/billing"
	"github.com/invoicing/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSender(t *testing.T, handler http.HandlerFunc) (*ResendSender, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sender, err := NewResendSender(&config.EmailConfig{
		APIKey:    "re_test_key",
		FromName:  "Acme Billing",
		FromEmail: "billing@acme.test",
		BaseURL:   server.URL,
	})
	require.NoError(t, err)
	return sender, server
}

func TestNewResendSender(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		_, err := NewResendSender(&config.EmailConfig{FromEmail: "a@b.test"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api key")
	})

	t.Run("requires from address", func(t *testing.T) {
		_, err := NewResendSender(&config.EmailConfig{APIKey: "key"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "from address")
	})

	t.Run("defaults base URL", func(t *testing.T) {
		sender, err := NewResendSender(&config.EmailConfig{APIKey: "key", FromEmail: "a@b.test"})
		require.NoError(t, err)
		assert.Equal(t, defaultBaseURL, sender.baseURL)
	})
}

func TestResendSender_Send(t *testing.T) {
	t.Run("posts message and returns provider ID", func(t *testing.T) {
		var captured resendRequest
		sender, _ := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/emails", r.URL.Path)
			assert.Equal(t, "Bearer re_test_key", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg_123"})
		})

		pdf := []byte("%PDF-1.4 fake")
		id, err := sender.Send(context.Background(), billingapp.EmailMessage{
			To:             "ap@globex.test",
			Subject:        "Invoice INV-0001",
			HTML:           "<p>hello</p>",
			AttachmentName: "INV-0001.pdf",
			Attachment:     pdf,
		})

		require.NoError(t, err)
		assert.Equal(t, "msg_123", id)
		assert.Equal(t, "Acme Billing <billing@acme.test>", captured.From)
		assert.Equal(t, []string{"ap@globex.test"}, captured.To)
		require.Len(t, captured.Attachments, 1)
		assert.Equal(t, "INV-0001.pdf", captured.Attachments[0].Filename)
		assert.Equal(t, base64.StdEncoding.EncodeToString(pdf), captured.Attachments[0].Content)
	})

	t.Run("surfaces provider errors", func(t *testing.T) {
		sender, _ := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid recipient"})
		})

		_, err := sender.Send(context.Background(), billingapp.EmailMessage{
			To:      "not-an-email",
			Subject: "Invoice",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "422")
		assert.Contains(t, err.Error(), "invalid recipient")
	})

	t.Run("rejects empty recipient without calling the API", func(t *testing.T) {
		called := false
		sender, _ := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		_, err := sender.Send(context.Background(), billingapp.EmailMessage{Subject: "Invoice"})

		require.Error(t, err)
		assert.False(t, called)
	})
}
