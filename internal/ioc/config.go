package ioc

import (
	"github.com/gotomicro/ego/core/econf"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
)

// InitDispatchConfig reads the rbs section, falling back to production
// framing constants for anything unset.
func InitDispatchConfig() domain.DispatchConfig {
	type Config struct {
		SandboxBroadcast bool   `yaml:"sandboxBroadcast"`
		SandboxClubhouse bool   `yaml:"sandboxClubhouse"`
		SMSPrefix        string `yaml:"smsPrefix"`
		SMSSuffix        string `yaml:"smsSuffix"`
		SMSCharLimit     int    `yaml:"smsCharLimit"`
	}
	var cfg Config
	if err := econf.UnmarshalKey("rbs", &cfg); err != nil {
		panic(err)
	}

	result := domain.DefaultDispatchConfig()
	result.SandboxBroadcast = cfg.SandboxBroadcast
	result.SandboxClubhouse = cfg.SandboxClubhouse
	if cfg.SMSPrefix != "" {
		result.SMSPrefix = cfg.SMSPrefix
	}
	if cfg.SMSSuffix != "" {
		result.SMSSuffix = cfg.SMSSuffix
	}
	if cfg.SMSCharLimit > 0 {
		result.SMSCharLimit = cfg.SMSCharLimit
	}
	return result
}
