package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/zionnix/jmd-remake/internal/booking"
)

// EmailNotifier delivers each admitted booking request to the site owner
// over plain SMTP (Mailpit-compatible, no auth).
type EmailNotifier struct {
	addr  string
	from  string
	owner string
}

func NewEmailNotifier(host, port, from, owner string) *EmailNotifier {
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@booking.local"
	}
	return &EmailNotifier{
		addr:  fmt.Sprintf("%s:%s", strings.TrimSpace(host), strings.TrimSpace(port)),
		from:  from,
		owner: strings.TrimSpace(owner),
	}
}

func (n *EmailNotifier) AppointmentRequested(ctx context.Context, appt *booking.Appointment) error {
	subject := fmt.Sprintf("New appointment request - %s", appt.Name)
	body := requestBody(appt)
	msg := buildMessage(n.from, n.owner, subject, body)
	return smtp.SendMail(n.addr, nil, n.from, []string{n.owner}, []byte(msg))
}

// SendDigest mails the owner a reminder about requests stuck in pending.
func (n *EmailNotifier) SendDigest(ctx context.Context, pending []booking.Appointment) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d appointment request(s) are waiting for review:\n\n", len(pending))
	for _, a := range pending {
		fmt.Fprintf(&b, "- %s on %s at %s (requested %s)\n",
			a.Name,
			a.SlotDate.Format("2006-01-02"),
			a.SlotTime,
			a.CreatedAt.Format("2006-01-02 15:04"),
		)
	}

	subject := fmt.Sprintf("%d appointment request(s) awaiting review", len(pending))
	msg := buildMessage(n.from, n.owner, subject, b.String())
	return smtp.SendMail(n.addr, nil, n.from, []string{n.owner}, []byte(msg))
}

func requestBody(appt *booking.Appointment) string {
	phone := "not provided"
	if appt.Phone != nil {
		phone = *appt.Phone
	}
	message := "no additional message"
	if appt.Message != nil {
		message = *appt.Message
	}

	var b strings.Builder
	b.WriteString("A new appointment request came in from the website.\n\n")
	fmt.Fprintf(&b, "Name:  %s\n", appt.Name)
	fmt.Fprintf(&b, "Email: %s\n", appt.Email)
	fmt.Fprintf(&b, "Phone: %s\n\n", phone)
	fmt.Fprintf(&b, "Date:  %s\n", appt.SlotDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Time:  %s\n\n", appt.SlotTime)
	fmt.Fprintf(&b, "Message:\n%s\n\n", message)
	fmt.Fprintf(&b, "Reply to the requester at: %s\n", appt.Email)
	return b.String()
}

func buildMessage(from, to, subject, body string) string {
	// Minimal RFC 5322 message; enough for Mailpit and most SMTP relays.
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from,
		to,
		subject,
		body,
	)
}
