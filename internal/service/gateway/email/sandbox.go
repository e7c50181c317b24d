package email

import (
	"context"

	"github.com/gotomicro/ego/core/elog"
)

var _ Mailer = (*Sandbox)(nil)

// Sandbox logs instead of sending.
type Sandbox struct {
	logger *elog.Component
}

func NewSandbox() *Sandbox {
	return &Sandbox{logger: elog.DefaultLogger}
}

func (s *Sandbox) Send(_ context.Context, msg Email) error {
	s.logger.Info("sandbox email send",
		elog.String("to", msg.To),
		elog.String("subject", msg.Subject))
	return nil
}
