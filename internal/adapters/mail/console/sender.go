// Package console es el sender de correo para desarrollo: escribe los
// mensajes al log en lugar de enviarlos.
package console

import (
	"context"
	"strings"

	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/ports/mail"
)

type Sender struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Sender {
	if log == nil {
		log = logger.Nop()
	}
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, msg mail.Message) error {
	s.log.Info().
		Str("to", strings.Join(msg.To, ", ")).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("mail (console sender)")
	return nil
}
