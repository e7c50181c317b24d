package clubhouse

import (
	"context"

	"github.com/gotomicro/ego/core/elog"
)

var _ Store = (*Sandbox)(nil)

type Sandbox struct {
	logger *elog.Component
}

func NewSandbox() *Sandbox {
	return &Sandbox{logger: elog.DefaultLogger}
}

func (s *Sandbox) Deliver(_ context.Context, post Post) error {
	s.logger.Info("sandbox mailbox deliver",
		elog.Int64("person_id", post.PersonID),
		elog.String("subject", post.Subject))
	return nil
}
