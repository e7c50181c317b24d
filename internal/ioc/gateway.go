package ioc

import (
	"github.com/ego-component/egorm"
	"github.com/gotomicro/ego/core/econf"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
	"github.com/rangerops/clubhouse-rbs/internal/service/gateway/clubhouse"
	"github.com/rangerops/clubhouse-rbs/internal/service/gateway/email"
	"github.com/rangerops/clubhouse-rbs/internal/service/gateway/sms"
)

// InitSMSClient picks the sandbox when the broadcast sandbox flag is on,
// so nothing downstream needs to branch on it.
func InitSMSClient(cfg domain.DispatchConfig) sms.Client {
	if cfg.SandboxBroadcast {
		return sms.NewSandbox()
	}
	type Config struct {
		AccountSID string `yaml:"accountSID"`
		AuthToken  string `yaml:"authToken"`
		From       string `yaml:"from"`
	}
	var c Config
	if err := econf.UnmarshalKey("twilio", &c); err != nil {
		panic(err)
	}
	return sms.NewMetricsClient("twilio", sms.NewTwilioClient(c.AccountSID, c.AuthToken, c.From))
}

func InitMailer(cfg domain.DispatchConfig) email.Mailer {
	if cfg.SandboxBroadcast {
		return email.NewSandbox()
	}
	type Config struct {
		Provider string `yaml:"provider"`
		APIKey   string `yaml:"apiKey"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	}
	var c Config
	if err := econf.UnmarshalKey("email", &c); err != nil {
		panic(err)
	}
	if c.Provider == "sendgrid" {
		return email.NewSendGridMailer(c.APIKey)
	}
	return email.NewSMTPMailer(c.Host, c.Port, c.Username, c.Password)
}

func InitMailbox(cfg domain.DispatchConfig, db *egorm.Component) clubhouse.Store {
	if cfg.SandboxClubhouse {
		return clubhouse.NewSandbox()
	}
	return clubhouse.NewGormStore(db)
}
