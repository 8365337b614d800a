package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/leadflow/leadflow/pkg/domain"
)

func TestFormatRawEmail(t *testing.T) {
	raw := formatRawEmail(domain.EmailMessage{
		To:      "lead@acme.test",
		From:    "rep@leadflow.test",
		Subject: "Quick question",
		Body:    "Saw your launch last week.",
	})

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)

	message := string(decoded)
	assert.Contains(t, message, "To: lead@acme.test\r\n")
	assert.Contains(t, message, "From: rep@leadflow.test\r\n")
	assert.Contains(t, message, "Subject: Quick question\r\n")
	assert.Contains(t, message, "\r\n\r\nSaw your launch last week.")
	assert.NotContains(t, message, "Content-Type: text/html")
}

func TestFormatRawEmail_HTML(t *testing.T) {
	raw := formatRawEmail(domain.EmailMessage{
		To:      "lead@acme.test",
		Subject: "Hello",
		Body:    "<p>Hi</p>",
		HTML:    true,
	})

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "Content-Type: text/html")
}

func TestSendMail_InvalidRecipient(t *testing.T) {
	sender := NewSender()

	err := sender.SendMail(context.Background(), "token-1", domain.EmailMessage{
		To:      "not-an-address",
		Subject: "Hello",
	})
	require.ErrorIs(t, err, domain.ErrProvider)
}

func TestSendMail_PostsRawMessage(t *testing.T) {
	var gotRaw string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Raw string `json:"raw"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotRaw = body.Raw

		_ = json.NewEncoder(w).Encode(map[string]any{"id": "msg-1"})
	}))
	defer server.Close()

	sender := NewSender(option.WithEndpoint(server.URL))

	err := sender.SendMail(context.Background(), "token-1", domain.EmailMessage{
		To:      "lead@acme.test",
		Subject: "Quick question",
		Body:    "Saw your launch.",
	})
	require.NoError(t, err)

	decoded, err := base64.URLEncoding.DecodeString(gotRaw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "To: lead@acme.test")
}
