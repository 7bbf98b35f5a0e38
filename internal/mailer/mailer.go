// Package mailer delivers transactional email over SMTP.
package mailer

import (
	"context"
	"fmt"

	"github.com/safar/printshop/internal/config"
	"github.com/safar/printshop/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(build(s.from, msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func build(from string, msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return m
}

// LogSender writes messages to the log instead of delivering them. Used when
// no SMTP server is configured.
type LogSender struct {
	Log logrus.FieldLogger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	s.Log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("mail not delivered, no SMTP server configured")
	return nil
}

// ContactNotification addresses a contact form submission to the shop inbox,
// with replies going back to the sender.
func ContactNotification(inbox string, c *models.ContactMessage) Message {
	subject := c.Subject
	if subject == "" {
		subject = "New contact form message"
	}

	return Message{
		To:      inbox,
		ReplyTo: c.Email,
		Subject: "[Contact] " + subject,
		Body:    fmt.Sprintf("From: %s <%s>\nReceived: %s\n\n%s\n", c.Name, c.Email, c.CreatedAt.Format("2006-01-02 15:04 MST"), c.Message),
	}
}
