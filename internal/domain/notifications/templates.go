package notifications

import (
	"bytes"
	"text/template"
	"time"

	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/inventory"
)

// Plantillas de correo. Texto plano, en el idioma de la clínica.
var (
	appointmentSubjects = map[appointments.Event]string{
		appointments.EventScheduled:   "Cita agendada para {{.PetName}}",
		appointments.EventConfirmed:   "Cita confirmada para {{.PetName}}",
		appointments.EventCancelled:   "Cita cancelada para {{.PetName}}",
		appointments.EventRescheduled: "Cita reprogramada para {{.PetName}}",
	}

	appointmentBodies = map[appointments.Event]string{
		appointments.EventScheduled: "Hola {{.OwnerName}},\n\n" +
			"Se agendó una cita para {{.PetName}} el {{.When}}.\n" +
			"Motivo: {{.Reason}}\n\nGracias por confiar en nosotros.",
		appointments.EventConfirmed: "Hola {{.OwnerName}},\n\n" +
			"La cita de {{.PetName}} del {{.When}} quedó confirmada.\n\n" +
			"Les esperamos.",
		appointments.EventCancelled: "Hola {{.OwnerName}},\n\n" +
			"La cita de {{.PetName}} del {{.When}} fue cancelada." +
			"{{if .Late}}\nLa cancelación se registró como tardía.{{end}}\n\n" +
			"Puede agendar una nueva cita cuando lo desee.",
		appointments.EventRescheduled: "Hola {{.OwnerName}},\n\n" +
			"La cita de {{.PetName}} se movió al {{.When}}.\n\n" +
			"Les esperamos.",
	}

	lowStockSubject = template.Must(template.New("low-stock-subject").Parse(
		"Stock bajo: {{.Name}}"))
	lowStockBody = template.Must(template.New("low-stock-body").Parse(
		"El producto {{.Name}} ({{.Type}}) quedó en {{.Stock}} {{.Unit}} " +
			"con mínimo de {{.MinStock}}.\n\nRevisar reposición."))
)

type appointmentData struct {
	OwnerName string
	PetName   string
	When      string
	Reason    string
	Late      bool
}

const whenLayout = "02/01/2006 15:04"

func renderAppointment(event appointments.Event, appt appointments.Appointment, ownerName, petName string) (subject, body string, ok bool) {
	subjTmpl, okS := appointmentSubjects[event]
	bodyTmpl, okB := appointmentBodies[event]
	if !okS || !okB {
		return "", "", false
	}
	data := appointmentData{
		OwnerName: ownerName,
		PetName:   petName,
		When:      appt.ScheduledAt.Format(whenLayout),
		Reason:    appt.Reason,
		Late:      appt.LateCancellation,
	}
	subject, err := render(string(event)+"-subject", subjTmpl, data)
	if err != nil {
		return "", "", false
	}
	body, err = render(string(event)+"-body", bodyTmpl, data)
	if err != nil {
		return "", "", false
	}
	return subject, body, true
}

func renderLowStock(item inventory.Item) (subject, body string, err error) {
	var s, b bytes.Buffer
	if err := lowStockSubject.Execute(&s, item); err != nil {
		return "", "", err
	}
	if err := lowStockBody.Execute(&b, item); err != nil {
		return "", "", err
	}
	return s.String(), b.String(), nil
}

func render(name, text string, data any) (string, error) {
	t, err := template.New(name).Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatWhen formatea la fecha de la cita tal como aparece en los
// correos: día/mes/año y hora con minutos.
func formatWhen(t time.Time) string {
	return t.Format(whenLayout)
}
