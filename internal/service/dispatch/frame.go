package dispatch

import (
	"fmt"
	"strings"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
	"github.com/rangerops/clubhouse-rbs/internal/errs"
)

// FrameSMS wraps a broadcast body in the standard prefix and opt-out
// suffix. The body budget already accounts for both, so a framed message
// never exceeds the carrier limit.
func FrameSMS(cfg domain.DispatchConfig, body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", fmt.Errorf("%w: empty sms body", errs.ErrInvalidParameter)
	}
	if len(body) > cfg.SMSLimit() {
		return "", fmt.Errorf("%w: sms body %d chars exceeds %d", errs.ErrInvalidParameter, len(body), cfg.SMSLimit())
	}
	return cfg.SMSPrefix + body + cfg.SMSSuffix, nil
}

// UnframeSMS strips the standard framing from a stored body. Bodies that
// predate framing come back unchanged.
func UnframeSMS(cfg domain.DispatchConfig, framed string) string {
	body := strings.TrimPrefix(framed, cfg.SMSPrefix)
	return strings.TrimSuffix(body, cfg.SMSSuffix)
}
