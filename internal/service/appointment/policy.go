package appointment

import (
	"time"

	"github.com/mediconnect/mediconnect_backend/config"
)

// Policy holds the booking rules. The three lead times apply to different
// call paths and are deliberately kept apart.
type Policy struct {
	// BookingLead is the notice a fresh booking needs.
	BookingLead time.Duration
	// ChangeLead is the notice cancel and reprogram need, measured on the
	// existing appointment.
	ChangeLead time.Duration
	// RebookLead is the notice the target block of a reprogram needs.
	RebookLead time.Duration
	// DailyCap bounds a patient's active appointments on one date.
	DailyCap int

	Location *time.Location
}

func DefaultPolicy() Policy {
	return Policy{
		BookingLead: 30 * time.Minute,
		ChangeLead:  2 * time.Hour,
		RebookLead:  0,
		DailyCap:    3,
		Location:    time.UTC,
	}
}

func PolicyFromConfig(cfg *config.Config) (Policy, error) {
	p := DefaultPolicy()
	loc, err := cfg.Clinic.Location()
	if err != nil {
		return Policy{}, err
	}
	p.Location = loc
	if cfg.Clinic.BookingLeadMinutes > 0 {
		p.BookingLead = time.Duration(cfg.Clinic.BookingLeadMinutes) * time.Minute
	}
	if cfg.Clinic.ChangeLeadMinutes > 0 {
		p.ChangeLead = time.Duration(cfg.Clinic.ChangeLeadMinutes) * time.Minute
	}
	p.RebookLead = time.Duration(cfg.Clinic.RebookLeadMinutes) * time.Minute
	if cfg.Clinic.DailyCap > 0 {
		p.DailyCap = cfg.Clinic.DailyCap
	}
	return p, nil
}
