package constants

const (
	AppName      = "mediconnect"
	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "MEDICONNECT"

	// DefaultTimezone is used when clinic.timezone is not configured.
	DefaultTimezone = "America/Santiago"
)
