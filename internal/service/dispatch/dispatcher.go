// Package dispatch fans a broadcast out across its requested channels and
// resolves failed attempts on retry.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/gotomicro/ego/core/elog"
	"github.com/sony/sonyflake"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
	"github.com/rangerops/clubhouse-rbs/internal/errs"
	"github.com/rangerops/clubhouse-rbs/internal/event/delivery"
	"github.com/rangerops/clubhouse-rbs/internal/repository"
	"github.com/rangerops/clubhouse-rbs/internal/service/gateway/sms"
	"github.com/rangerops/clubhouse-rbs/internal/service/selector"
)

const smsWorkers = 8

//go:generate mockgen -source=./dispatcher.go -package=dispatchmocks -destination=./mocks/dispatcher.mock.go
type Dispatcher interface {
	// Transmit resolves the audience, records the broadcast, sends SMS
	// inline and queues email and clubhouse deliveries.
	Transmit(ctx context.Context, alertID int64, criteria domain.Criteria, req domain.TransmitRequest) (domain.Summary, error)
	// Preview sizes the audience without sending anything.
	Preview(ctx context.Context, alertID int64, criteria domain.Criteria) (int, error)
}

type dispatcher struct {
	cfg         domain.DispatchConfig
	selector    selector.Service
	alerts      repository.AlertRepository
	broadcasts  repository.BroadcastRepository
	messages    repository.MessageRepository
	smsGateway  sms.Client
	producer    delivery.TaskProducer
	idGenerator *sonyflake.Sonyflake
	logger      *elog.Component
}

func NewDispatcher(
	cfg domain.DispatchConfig,
	sel selector.Service,
	alerts repository.AlertRepository,
	broadcasts repository.BroadcastRepository,
	messages repository.MessageRepository,
	smsGateway sms.Client,
	producer delivery.TaskProducer,
	idGenerator *sonyflake.Sonyflake,
) Dispatcher {
	return &dispatcher{
		cfg:         cfg,
		selector:    sel,
		alerts:      alerts,
		broadcasts:  broadcasts,
		messages:    messages,
		smsGateway:  smsGateway,
		producer:    producer,
		idGenerator: idGenerator,
		logger:      elog.DefaultLogger,
	}
}

func (d *dispatcher) Preview(ctx context.Context, alertID int64, criteria domain.Criteria) (int, error) {
	alert, err := d.alerts.GetByID(ctx, alertID)
	if err != nil {
		return 0, err
	}
	return d.selector.Count(ctx, alert, criteria)
}

func (d *dispatcher) Transmit(ctx context.Context, alertID int64, criteria domain.Criteria, req domain.TransmitRequest) (domain.Summary, error) {
	if err := req.Validate(); err != nil {
		return domain.Summary{}, err
	}
	alert, err := d.alerts.GetByID(ctx, alertID)
	if err != nil {
		return domain.Summary{}, err
	}
	if alert.IsSimple() && (req.SendEmail || req.SendClubhouse) {
		return domain.Summary{}, fmt.Errorf("%w: simple alerts deliver by sms only", errs.ErrInvalidParameter)
	}

	var framedSMS string
	if req.SendSMS {
		framedSMS, err = FrameSMS(d.cfg, req.SMSMessage)
		if err != nil {
			return domain.Summary{}, err
		}
	}

	recipients, err := d.selector.Select(ctx, alert, criteria)
	if err != nil {
		return domain.Summary{}, err
	}

	id, err := d.idGenerator.NextID()
	if err != nil {
		return domain.Summary{}, fmt.Errorf("%w: generate id: %w", errs.ErrCreateBroadcastFailed, err)
	}
	broadcast, err := d.broadcasts.Create(ctx, domain.Broadcast{
		ID:             id,
		SenderID:       req.SenderID,
		AlertID:        alertID,
		SMSMessage:     framedSMS,
		EmailMessage:   req.Message,
		Subject:        req.Subject,
		SenderAddress:  req.From,
		RecipientCount: len(recipients),
		SentSMS:        req.SendSMS,
		SentEmail:      req.SendEmail,
		SentClubhouse:  req.SendClubhouse,
	})
	if err != nil {
		return domain.Summary{}, err
	}

	summary := domain.Summary{BroadcastID: broadcast.ID, RecipientCount: len(recipients)}

	if req.SendSMS {
		summary.SMSSuccesses, summary.SMSFails = d.sendSMSBatch(ctx, broadcast, alert, recipients, framedSMS)
	}
	if req.SendEmail {
		summary.EmailQueued, err = d.queueDeferred(ctx, broadcast, req, recipients, domain.ChannelEmail)
		if err != nil {
			return summary, err
		}
	}
	if req.SendClubhouse {
		summary.ClubhouseQueued, err = d.queueDeferred(ctx, broadcast, req, recipients, domain.ChannelClubhouse)
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// sendSMSBatch sends inline on a bounded worker pool. Recipients without a
// usable number for the alert are skipped without a row; unverified numbers
// still get an attempt, stopped numbers never do.
func (d *dispatcher) sendSMSBatch(ctx context.Context, broadcast domain.Broadcast, alert domain.Alert, recipients []domain.Recipient, body string) (successes, fails int) {
	type target struct {
		personID int64
		number   string
	}
	targets := make([]target, 0, len(recipients))
	for _, r := range recipients {
		number, ok := r.PhoneFor(alert)
		if !ok {
			continue
		}
		targets = append(targets, target{personID: r.ID, number: number})
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failed    int
	)
	jobs := make(chan target)
	workers := smsWorkers
	if len(targets) < workers {
		workers = len(targets)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				status := domain.StatusSent
				if _, err := d.smsGateway.Send(ctx, sms.SendReq{To: t.number, Body: body}); err != nil {
					status = domain.StatusFailed
					d.logger.Warn("sms send failed",
						elog.Any("broadcast_id", broadcast.ID),
						elog.Int64("person_id", t.personID),
						elog.FieldErr(err))
				}
				if _, err := d.messages.RecordAttempt(ctx, domain.Message{
					BroadcastID: broadcast.ID,
					AlertID:     broadcast.AlertID,
					PersonID:    t.personID,
					Channel:     domain.ChannelSMS,
					Address:     t.number,
					Direction:   domain.DirectionOutbound,
					Status:      status,
					Body:        body,
				}); err != nil {
					d.logger.Error("record sms attempt failed",
						elog.Any("broadcast_id", broadcast.ID),
						elog.FieldErr(err))
				}
				mu.Lock()
				if status == domain.StatusSent {
					succeeded++
				} else {
					failed++
				}
				mu.Unlock()
			}
		}()
	}
	for _, t := range targets {
		jobs <- t
	}
	close(jobs)
	wg.Wait()
	return succeeded, failed
}

// queueDeferred appends queued rows for the channel, then hands the batch
// to the delivery topic. Rows go in first so a producer crash leaves
// queued rows a retry can resolve, never sends without a trace.
func (d *dispatcher) queueDeferred(ctx context.Context, broadcast domain.Broadcast, req domain.TransmitRequest, recipients []domain.Recipient, channel domain.Channel) (int, error) {
	pending := make([]domain.Message, 0, len(recipients))
	for _, r := range recipients {
		address := r.Callsign
		if channel == domain.ChannelEmail {
			if r.Email == "" {
				continue
			}
			address = r.Email
		}
		pending = append(pending, domain.Message{
			BroadcastID: broadcast.ID,
			AlertID:     broadcast.AlertID,
			PersonID:    r.ID,
			Channel:     channel,
			Address:     address,
			Direction:   domain.DirectionOutbound,
			Status:      domain.StatusQueued,
			Body:        req.Message,
		})
	}
	created, err := d.messages.RecordAttempts(ctx, pending)
	if err != nil {
		return 0, err
	}
	if len(created) == 0 {
		return 0, nil
	}

	task := delivery.Task{
		BroadcastID: broadcast.ID,
		AlertID:     broadcast.AlertID,
		SenderID:    broadcast.SenderID,
		Channel:     string(channel),
		Subject:     req.Subject,
		Body:        req.Message,
		From:        req.From,
	}
	for _, m := range created {
		task.Recipients = append(task.Recipients, delivery.TaskRecipient{
			MessageID: m.ID,
			PersonID:  m.PersonID,
			Address:   m.Address,
		})
	}
	if err := d.producer.Produce(ctx, task); err != nil {
		// Rows stay queued; retry picks them up once they are marked
		// failed by the operator or a sweep.
		return len(created), fmt.Errorf("queue %s task: %w", channel, err)
	}
	return len(created), nil
}
