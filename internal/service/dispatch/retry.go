package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/gotomicro/ego/core/elog"
	dlock "github.com/meoying/dlock-go"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
	"github.com/rangerops/clubhouse-rbs/internal/errs"
	"github.com/rangerops/clubhouse-rbs/internal/repository"
	"github.com/rangerops/clubhouse-rbs/internal/service/gateway/clubhouse"
	"github.com/rangerops/clubhouse-rbs/internal/service/gateway/email"
	"github.com/rangerops/clubhouse-rbs/internal/service/gateway/sms"
)

const (
	retryLockExpiration = time.Minute
	retryLockTimeout    = time.Second * 3
)

//go:generate mockgen -source=./retry.go -package=dispatchmocks -destination=./mocks/retry.mock.go
type RetryCoordinator interface {
	// Retry re-attempts every failed row of a broadcast. Rows resolve in
	// place; the row count for the broadcast never grows.
	Retry(ctx context.Context, broadcastID uint64) (domain.Summary, error)
}

type retryCoordinator struct {
	broadcasts repository.BroadcastRepository
	messages   repository.MessageRepository
	smsGateway sms.Client
	mailer     email.Mailer
	mailbox    clubhouse.Store
	lockClient dlock.Client
	logger     *elog.Component
}

func NewRetryCoordinator(
	broadcasts repository.BroadcastRepository,
	messages repository.MessageRepository,
	smsGateway sms.Client,
	mailer email.Mailer,
	mailbox clubhouse.Store,
	lockClient dlock.Client,
) RetryCoordinator {
	return &retryCoordinator{
		broadcasts: broadcasts,
		messages:   messages,
		smsGateway: smsGateway,
		mailer:     mailer,
		mailbox:    mailbox,
		lockClient: lockClient,
		logger:     elog.DefaultLogger,
	}
}

func (r *retryCoordinator) Retry(ctx context.Context, broadcastID uint64) (domain.Summary, error) {
	broadcast, err := r.broadcasts.GetByID(ctx, broadcastID)
	if err != nil {
		return domain.Summary{}, err
	}

	// One retry per broadcast at a time, across all instances. Two
	// operators double-resolving the same rows would double-send.
	lock, err := r.lockClient.NewLock(ctx, fmt.Sprintf("rbs:retry:%d", broadcastID), retryLockExpiration)
	if err != nil {
		return domain.Summary{}, err
	}
	lockCtx, cancel := context.WithTimeout(ctx, retryLockTimeout)
	err = lock.Lock(lockCtx)
	cancel()
	if err != nil {
		return domain.Summary{}, fmt.Errorf("%w: broadcast %d", errs.ErrRetryInProgress, broadcastID)
	}
	defer func() {
		unCtx, cancel := context.WithTimeout(context.Background(), retryLockTimeout)
		defer cancel()
		if unErr := lock.Unlock(unCtx); unErr != nil {
			r.logger.Warn("release retry lock failed",
				elog.Any("broadcast_id", broadcastID),
				elog.FieldErr(unErr))
		}
	}()

	failed, err := r.messages.ListFailedByBroadcast(ctx, broadcastID)
	if err != nil {
		return domain.Summary{}, err
	}

	summary := domain.Summary{BroadcastID: broadcastID}
	for _, row := range failed {
		switch row.Channel {
		case domain.ChannelSMS:
			if r.resolve(ctx, row, r.retrySMS(ctx, broadcast, row)) {
				summary.SMSSuccesses++
			} else {
				summary.SMSFails++
			}
		case domain.ChannelEmail:
			if r.resolve(ctx, row, r.retryEmail(ctx, broadcast, row)) {
				summary.EmailSuccesses++
			} else {
				summary.EmailFails++
			}
		case domain.ChannelClubhouse:
			if r.resolve(ctx, row, r.retryClubhouse(ctx, broadcast, row)) {
				summary.ClubhouseQueued++
			} else {
				summary.ClubhouseFails++
			}
		}
	}
	return summary, nil
}

// resolve flips the row to sent when the re-attempt succeeded. A row that
// failed again keeps its status; no new row is written either way.
func (r *retryCoordinator) resolve(ctx context.Context, row domain.Message, sendErr error) bool {
	if sendErr != nil {
		r.logger.Warn("retry attempt failed",
			elog.Any("message_id", row.ID),
			elog.String("channel", string(row.Channel)),
			elog.FieldErr(sendErr))
		return false
	}
	if err := r.messages.UpdateAttemptStatus(ctx, row.ID, domain.StatusSent); err != nil {
		r.logger.Error("resolve retried row failed",
			elog.Any("message_id", row.ID),
			elog.FieldErr(err))
		return false
	}
	return true
}

func (r *retryCoordinator) retrySMS(ctx context.Context, broadcast domain.Broadcast, row domain.Message) error {
	body := row.Body
	if body == "" {
		body = broadcast.SMSMessage
	}
	_, err := r.smsGateway.Send(ctx, sms.SendReq{To: row.Address, Body: body})
	return err
}

func (r *retryCoordinator) retryEmail(ctx context.Context, broadcast domain.Broadcast, row domain.Message) error {
	return r.mailer.Send(ctx, email.Email{
		From:    broadcast.SenderAddress,
		To:      row.Address,
		Subject: broadcast.Subject,
		Text:    broadcast.EmailMessage,
	})
}

func (r *retryCoordinator) retryClubhouse(ctx context.Context, broadcast domain.Broadcast, row domain.Message) error {
	return r.mailbox.Deliver(ctx, clubhouse.Post{
		PersonID: row.PersonID,
		SenderID: broadcast.SenderID,
		Subject:  broadcast.Subject,
		Body:     broadcast.EmailMessage,
	})
}
