package sms

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gotomicro/ego/core/elog"
)

var _ Client = (*Sandbox)(nil)

// Sandbox logs every send instead of contacting a provider. Used when the
// broadcast sandbox flag is on and in tests.
type Sandbox struct {
	logger *elog.Component
	seq    uint64
}

func NewSandbox() *Sandbox {
	return &Sandbox{logger: elog.DefaultLogger}
}

func (s *Sandbox) Send(_ context.Context, req SendReq) (SendResp, error) {
	id := atomic.AddUint64(&s.seq, 1)
	s.logger.Info("sandbox sms send",
		elog.String("to", req.To),
		elog.String("body", req.Body))
	return SendResp{ProviderID: fmt.Sprintf("sandbox-%d", id)}, nil
}

func (s *Sandbox) Lookup(_ context.Context, _ string) (bool, error) {
	return true, nil
}
