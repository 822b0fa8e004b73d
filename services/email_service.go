// File: /services/email_service.go
package services

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"afisha-api/config"
)

// EmailService sends notification emails. All sends are best-effort: callers
// fire them off in a goroutine and the request never waits on SMTP.
type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer
}

func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)

	return &EmailService{
		config: cfg,
		dialer: dialer,
	}
}

// SendEventPublishedEmail notifies an initiator that their event passed
// review and is now visible to the public.
func (es *EmailService) SendEventPublishedEmail(email, name, eventTitle string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your event has been published")

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Hello %s!</h2>
    <p>Good news: your event <strong>%s</strong> has been reviewed and published.</p>
    <p>Users can now find it in the public listing and submit participation requests.</p>
    <p>The Afisha Team</p>
</body>
</html>`, name, eventTitle)

	textBody := fmt.Sprintf(`
Hello %s!

Good news: your event "%s" has been reviewed and published.

Users can now find it in the public listing and submit participation requests.

The Afisha Team
`, name, eventTitle)

	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send publication email: %w", err)
	}

	log.Printf("Publication email sent to %s for event %q", email, eventTitle)
	return nil
}

// SendRequestReceivedEmail notifies an initiator that someone asked to join
// their event and is waiting for moderation.
func (es *EmailService) SendRequestReceivedEmail(email, initiatorName, requesterName, eventTitle string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", email)
	m.SetHeader("Subject", "New participation request for your event")

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Hello %s!</h2>
    <p><strong>%s</strong> wants to join your event <strong>%s</strong>.</p>
    <p>The request is pending your decision.</p>
    <p>The Afisha Team</p>
</body>
</html>`, initiatorName, requesterName, eventTitle)

	textBody := fmt.Sprintf(`
Hello %s!

%s wants to join your event "%s".

The request is pending your decision.

The Afisha Team
`, initiatorName, requesterName, eventTitle)

	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send request notification email: %w", err)
	}

	log.Printf("Request notification email sent to %s for event %q", email, eventTitle)
	return nil
}
