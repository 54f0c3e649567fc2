// Package smtp envía correo por un relay SMTP plano. Para entornos sin
// relay configurado está el sender de consola en el paquete vecino.
package smtp

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"vet-clinic-api/internal/ports/mail"
)

type Sender struct {
	addr string // host:puerto
	from string
	auth smtp.Auth
}

// New crea el sender. user y password vacíos deshabilitan AUTH, útil
// con relays internos.
func New(addr, from, user, password, host string) *Sender {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &Sender{addr: addr, from: from, auth: auth}
}

func (s *Sender) Send(ctx context.Context, msg mail.Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("smtp send: no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body := buildMessage(s.from, msg)
	if err := smtp.SendMail(s.addr, s.auth, s.from, msg.To, body); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(from string, msg mail.Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}
