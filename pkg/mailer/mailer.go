package mailer

import (
	"fmt"
	"html"
	"strings"

	"github.com/wneessen/go-mail"
)

//go:generate mockgen -destination=../mocks/mock_mailer.go -package=pkgmocks github.com/cluckhub/cluckhub/pkg/mailer Mailer

// Mailer is the interface for sending emails
type Mailer interface {
	// SendReminderDigest sends one farm's due-today reminder summary
	SendReminderDigest(email, farmName string, lines []string) error
}

// Config holds the configuration for the mailer
type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// IsConfigured reports whether an SMTP host is set. Without one the app
// falls back to the no-op mailer and the digest job silently does nothing.
func (c *Config) IsConfigured() bool {
	return c.SMTPHost != "" && c.FromEmail != ""
}

// SMTPMailer implements the Mailer interface using SMTP
type SMTPMailer struct {
	config   *Config
	testMode bool
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(config *Config) *SMTPMailer {
	return &SMTPMailer{
		config:   config,
		testMode: false,
	}
}

// NewTestSMTPMailer creates a new SMTP mailer in test mode (won't connect to an SMTP server)
func NewTestSMTPMailer(config *Config) *SMTPMailer {
	return &SMTPMailer{
		config:   config,
		testMode: true,
	}
}

// SendReminderDigest sends one farm's due-today reminder summary
func (m *SMTPMailer) SendReminderDigest(email, farmName string, lines []string) error {
	msg := mail.NewMsg(mail.WithNoDefaultUserAgent())

	if err := msg.FromFormat(m.config.FromName, m.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set email from address: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("failed to set email recipient: %w", err)
	}

	msg.Subject(fmt.Sprintf("Reminders due today on %s", farmName))

	plainBody := fmt.Sprintf(
		"Hello,\n\nThese reminders on %s are due today:\n\n- %s\n\nThanks,\nThe Cluck Hub Team",
		farmName, strings.Join(lines, "\n- "))

	msg.SetBodyString(mail.TypeTextHTML, digestHTMLBody(farmName, lines))
	msg.AddAlternativeString(mail.TypeTextPlain, plainBody)

	if m.testMode {
		return nil
	}
	return m.send(msg)
}

// digestHTMLBody builds the HTML digest. Reminder titles and notes come
// straight from user-edited farm data, so every line is escaped.
func digestHTMLBody(farmName string, lines []string) string {
	var items strings.Builder
	for _, line := range lines {
		items.WriteString(fmt.Sprintf("<li>%s</li>", html.EscapeString(line)))
	}
	return fmt.Sprintf(`
	<html>
		<body>
			<h1>Reminders due today</h1>
			<p>Hello,</p>
			<p>These reminders on <strong>%s</strong> are due today:</p>
			<ul>%s</ul>
			<p>Thanks,<br>The Cluck Hub Team</p>
		</body>
	</html>`, html.EscapeString(farmName), items.String())
}

func (m *SMTPMailer) send(msg *mail.Msg) error {
	client, err := mail.NewClient(m.config.SMTPHost,
		mail.WithPort(m.config.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.config.SMTPUsername),
		mail.WithPassword(m.config.SMTPPassword),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// NoOpMailer discards every message. Used when SMTP is not configured.
type NoOpMailer struct{}

func NewNoOpMailer() *NoOpMailer {
	return &NoOpMailer{}
}

func (m *NoOpMailer) SendReminderDigest(email, farmName string, lines []string) error {
	return nil
}
