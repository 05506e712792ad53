package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"text/template"

	gomail "gopkg.in/mail.v2"

	"staynest/internal/app/policies"
)

//go:embed templates
var templateFS embed.FS

// SMTPNotifier delivers notifications over email. Template names map to
// files under templates/, each defining a "subject" and a "body" block.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPNotifier(host string, port int, username, password, from string) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, to string, templateName string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmpl, err := template.ParseFS(templateFS, "templates/"+templateName+".tmpl")
	if err != nil {
		return fmt.Errorf("notify: unknown template %q: %w", templateName, err)
	}
	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return fmt.Errorf("notify: render subject: %w", err)
	}
	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "body", data); err != nil {
		return fmt.Errorf("notify: render body: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", body.String())
	return n.dialer.DialAndSend(msg)
}

var _ policies.Notifier = (*SMTPNotifier)(nil)
