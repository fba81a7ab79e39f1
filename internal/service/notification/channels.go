package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/mediconnect/mediconnect_backend/pkg/email"
	"github.com/mediconnect/mediconnect_backend/pkg/sms"
)

var ErrUnknownKind = errors.New("unknown notice kind")

// Channel delivers one notice over one medium.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, n Notice) error
}

type EmailChannel struct {
	client *email.Client
}

func NewEmailChannel(c *email.Client) *EmailChannel {
	return &EmailChannel{client: c}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Deliver(ctx context.Context, n Notice) error {
	if !c.client.Enabled() || n.PatientEmail == "" {
		return nil
	}
	msg, err := EmailFor(c.client.AppName(), n)
	if err != nil {
		return err
	}
	return c.client.Send(ctx, msg)
}

// EmailFor renders the e-mail for a notice.
func EmailFor(appName string, n Notice) (email.Message, error) {
	d := email.AppointmentEmailData{
		AppName:      appName,
		PatientName:  n.PatientName,
		Email:        n.PatientEmail,
		Professional: n.ProfessionalName,
		Specialty:    n.Specialty,
		Start:        n.Start,
		Reason:       n.Reason,
	}
	if n.PreviousStart != nil {
		d.Previous = *n.PreviousStart
	}

	switch n.Kind {
	case KindBooked:
		return email.BuildAppointmentBookedEmail(d), nil
	case KindCancelled:
		return email.BuildAppointmentCancelledEmail(d), nil
	case KindRescheduled:
		return email.BuildAppointmentRescheduledEmail(d), nil
	}
	return email.Message{}, fmt.Errorf("%w: %q", ErrUnknownKind, n.Kind)
}

type SMSChannel struct {
	client *sms.Client
}

func NewSMSChannel(c *sms.Client) *SMSChannel {
	return &SMSChannel{client: c}
}

func (c *SMSChannel) Name() string { return "sms" }

func (c *SMSChannel) Deliver(ctx context.Context, n Notice) error {
	if !c.client.IsEnabled() || n.PatientPhone == "" {
		return nil
	}
	return c.client.Send(ctx, n.PatientPhone, sms.Kind(n.Kind), SMSParams(n))
}

// SMSParams fills the template parameters shared by every sms.ir template.
func SMSParams(n Notice) map[string]string {
	p := map[string]string{
		"NAME":         n.PatientName,
		"PROFESSIONAL": n.ProfessionalName,
		"DATE":         n.Start.Format("02/01/2006"),
		"TIME":         n.Start.Format("15:04"),
	}
	if n.PreviousStart != nil {
		p["PREVIOUS"] = n.PreviousStart.Format("02/01/2006 15:04")
	}
	if n.Reason != "" {
		p["REASON"] = n.Reason
	}
	return p
}
