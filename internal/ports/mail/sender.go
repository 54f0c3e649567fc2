// Package mail define el puerto de correo saliente. Los adaptadores
// concretos (SMTP, log) viven en internal/adapters/mail.
package mail

import "context"

// Message representa un correo a enviar.
type Message struct {
	To      []string
	Subject string
	Body    string // texto plano
}

// Sender envía un correo. Los errores de envío nunca deben abortar la
// operación de negocio que los disparó; el caller decide loguear.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
