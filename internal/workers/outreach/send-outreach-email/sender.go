// internal/workers/outreach/send-outreach-email/sender.go
package sendoutreachemail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	commonaws "leadgen-workers/internal/common/aws"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// NewSender picks SES or SMTP based on config. sesClient may be nil when
// SES is disabled.
func NewSender(config *Config, sesClient *commonaws.SESClient) EmailSender {
	if config.UseSES && sesClient != nil {
		return &sesSender{client: sesClient}
	}
	return &smtpSender{config: config}
}

type sesSender struct {
	client *commonaws.SESClient
}

func (s *sesSender) Provider() string { return "ses" }

func (s *sesSender) Send(ctx context.Context, from, to, subject, body string, isHTML bool) (string, error) {
	content := &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")}
	emailBody := &types.Body{Text: content}
	if isHTML {
		emailBody = &types.Body{Html: content}
	}

	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(from),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body:    emailBody,
		},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

type smtpSender struct {
	config *Config
}

func (s *smtpSender) Provider() string { return "smtp" }

func (s *smtpSender) Send(ctx context.Context, from, to, subject, body string, isHTML bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled before sending email: %w", err)
	}

	message := buildMessage(from, to, subject, body, isHTML)
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" && s.config.SMTPPassword != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	var err error
	if s.config.UseTLS {
		err = s.sendWithTLS(addr, auth, from, []string{to}, []byte(message))
	} else {
		err = smtp.SendMail(addr, auth, from, []string{to}, []byte(message))
	}
	if err != nil {
		return "", err
	}

	return s.generateMessageID(to), nil
}

func buildMessage(from, to, subject, body string, isHTML bool) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("From: %s\r\n", from))
	builder.WriteString(fmt.Sprintf("To: %s\r\n", to))
	builder.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	builder.WriteString("MIME-Version: 1.0\r\n")
	if isHTML {
		builder.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	} else {
		builder.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	}
	builder.WriteString("\r\n")
	builder.WriteString(body)

	return builder.String()
}

func (s *smtpSender) sendWithTLS(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: s.config.SMTPHost}
	if err = client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range to {
		if err = client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

func (s *smtpSender) generateMessageID(to string) string {
	return fmt.Sprintf("<%d.%s@%s>", time.Now().UnixNano(), localPart(to), s.config.SMTPHost)
}

func localPart(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) == 0 {
		return "user"
	}
	local := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, parts[0])
	if len(local) > 10 {
		local = local[:10]
	}
	if local == "" {
		return "user"
	}
	return local
}
