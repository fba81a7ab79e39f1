package authorize

import "github.com/mediconnect/mediconnect_backend/config"

// Config holds configuration for the authorization system
type Config struct {
	// CasbinModelPath is the path to the Casbin model configuration file
	CasbinModelPath string

	// EnableAudit enables audit logging for all authorization decisions
	EnableAudit bool

	// PolicySyncEnabled enables policy synchronization across distributed instances
	PolicySyncEnabled bool
}

func DefaultConfig() Config {
	return Config{
		CasbinModelPath:   "casbin_model.conf",
		EnableAudit:       true,
		PolicySyncEnabled: false,
	}
}

// FromCentralConfig converts central config.AuthorizationConfig to package Config
func FromCentralConfig(c config.AuthorizationConfig) Config {
	out := Config{
		CasbinModelPath:   c.CasbinModelPath,
		EnableAudit:       c.EnableAudit,
		PolicySyncEnabled: c.PolicySyncEnabled,
	}
	if out.CasbinModelPath == "" {
		out.CasbinModelPath = DefaultConfig().CasbinModelPath
	}
	return out
}
