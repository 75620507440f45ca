package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

type SMTPSender struct {
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)}
}

func (s *SMTPSender) Send(msg Message) error {
	m := buildMessage(msg)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func buildMessage(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return m
}
