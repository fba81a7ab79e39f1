package scheduling

import (
	"time"

	"github.com/mediconnect/mediconnect_backend/config"
)

// RulesFromConfig overlays the clinic section of the central config on
// DefaultRules.
func RulesFromConfig(cfg *config.Config) (Rules, error) {
	r := DefaultRules()
	loc, err := cfg.Clinic.Location()
	if err != nil {
		return Rules{}, err
	}
	r.Location = loc
	if cfg.Clinic.HorizonDays > 0 {
		r.HorizonDays = cfg.Clinic.HorizonDays
	}
	if cfg.Clinic.BookingLeadMinutes > 0 {
		r.BookingLead = time.Duration(cfg.Clinic.BookingLeadMinutes) * time.Minute
	}
	if cfg.Clinic.OpenBlocksLimit > 0 {
		r.OpenBlocksLimit = min(cfg.Clinic.OpenBlocksLimit, r.MaxOpenBlocks)
	}
	return r, nil
}
