package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/leadflow/leadflow/pkg/domain"
)

// Sender sends outreach mail through the Gmail API on behalf of the user. A
// fresh service is built per call because every request carries a
// per-user token.
type Sender struct {
	options []option.ClientOption
}

var _ domain.MailSender = (*Sender)(nil)

// NewSender accepts extra client options, used by tests to point the service
// at a local endpoint.
func NewSender(options ...option.ClientOption) *Sender {
	return &Sender{options: options}
}

func (s *Sender) SendMail(ctx context.Context, accessToken string, message domain.EmailMessage) error {
	if !strings.Contains(message.To, "@") {
		return fmt.Errorf("%w: invalid recipient address %q", domain.ErrProvider, message.To)
	}

	service, err := s.newService(ctx, accessToken)
	if err != nil {
		return err
	}

	raw := formatRawEmail(message)

	_, err = service.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: sending mail to %s: %v", domain.ErrProvider, message.To, err)
	}

	return nil
}

func (s *Sender) newService(ctx context.Context, accessToken string) (*gmail.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	client := oauth2.NewClient(ctx, ts)

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, s.options...)

	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: creating gmail service: %v", domain.ErrProvider, err)
	}

	return service, nil
}

func formatRawEmail(message domain.EmailMessage) string {
	headers := []string{
		fmt.Sprintf("To: %s", message.To),
	}

	if message.From != "" {
		headers = append(headers, fmt.Sprintf("From: %s", message.From))
	}

	headers = append(headers, fmt.Sprintf("Subject: %s", message.Subject))

	if message.HTML {
		headers = append(headers, "Content-Type: text/html; charset=\"UTF-8\"")
	}

	headers = append(headers, "", message.Body)

	return base64.URLEncoding.EncodeToString([]byte(strings.Join(headers, "\r\n")))
}
