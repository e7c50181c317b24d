package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gotomicro/ego/core/elog"
	"github.com/hashicorp/go-multierror"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
	"github.com/rangerops/clubhouse-rbs/internal/pkg/mqx"
	"github.com/rangerops/clubhouse-rbs/internal/repository"
	"github.com/rangerops/clubhouse-rbs/internal/service/gateway/clubhouse"
	"github.com/rangerops/clubhouse-rbs/internal/service/gateway/email"
)

const defaultWorkers = 8

// TaskConsumer drains the deferred-delivery topic. Each recipient's row
// was created queued at transmit time; the consumer performs the send and
// resolves the row to sent or failed. The offset commits only after every
// row is resolved, so a crash replays the task rather than losing it.
type TaskConsumer struct {
	consumer mqx.Consumer
	mailer   email.Mailer
	mailbox  clubhouse.Store
	messages repository.MessageRepository
	workers  int
	logger   *elog.Component
}

func NewTaskConsumer(
	consumer mqx.Consumer,
	mailer email.Mailer,
	mailbox clubhouse.Store,
	messages repository.MessageRepository,
) *TaskConsumer {
	return &TaskConsumer{
		consumer: consumer,
		mailer:   mailer,
		mailbox:  mailbox,
		messages: messages,
		workers:  defaultWorkers,
		logger:   elog.DefaultLogger,
	}
}

func (c *TaskConsumer) Start(ctx context.Context) {
	go func() {
		for {
			if ctx.Err() != nil {
				return
			}
			if err := c.Consume(ctx); err != nil {
				c.logger.Error("consume delivery task failed", elog.FieldErr(err))
			}
		}
	}()
}

func (c *TaskConsumer) Consume(ctx context.Context) error {
	msg, err := c.consumer.ReadMessage(-1)
	if err != nil {
		return fmt.Errorf("read message: %w", err)
	}

	var task Task
	if err := json.Unmarshal(msg.Value, &task); err != nil {
		// A malformed task will never deserialize; skip it instead of
		// wedging the partition.
		c.logger.Warn("unmarshal delivery task failed",
			elog.FieldErr(err),
			elog.Any("msg", msg))
		_, _ = c.consumer.CommitMessage(msg)
		return nil
	}

	if err := c.handle(ctx, task); err != nil {
		c.logger.Error("handle delivery task failed",
			elog.FieldErr(err),
			elog.Any("broadcast_id", task.BroadcastID),
			elog.String("channel", task.Channel))
	}

	if _, err := c.consumer.CommitMessage(msg); err != nil {
		return fmt.Errorf("commit message: %w", err)
	}
	return nil
}

func (c *TaskConsumer) handle(ctx context.Context, task Task) error {
	switch domain.Channel(task.Channel) {
	case domain.ChannelEmail:
		return c.fanOut(ctx, task, c.sendEmail)
	case domain.ChannelClubhouse:
		return c.fanOut(ctx, task, c.deliverMailbox)
	default:
		return fmt.Errorf("unknown task channel %q", task.Channel)
	}
}

// fanOut runs one send per recipient on a bounded worker pool and resolves
// each delivery-log row as it completes. A failed send marks its row
// failed and keeps going; it never aborts the batch.
func (c *TaskConsumer) fanOut(ctx context.Context, task Task, send func(ctx context.Context, task Task, r TaskRecipient) error) error {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result *multierror.Error
	)
	jobs := make(chan TaskRecipient)

	workers := c.workers
	if len(task.Recipients) < workers {
		workers = len(task.Recipients)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range jobs {
				status := domain.StatusSent
				if err := send(ctx, task, r); err != nil {
					status = domain.StatusFailed
					mu.Lock()
					result = multierror.Append(result, fmt.Errorf("person %d: %w", r.PersonID, err))
					mu.Unlock()
				}
				if err := c.messages.UpdateAttemptStatus(ctx, r.MessageID, status); err != nil {
					mu.Lock()
					result = multierror.Append(result, fmt.Errorf("resolve row %d: %w", r.MessageID, err))
					mu.Unlock()
				}
			}
		}()
	}
	for _, r := range task.Recipients {
		jobs <- r
	}
	close(jobs)
	wg.Wait()
	return result.ErrorOrNil()
}

func (c *TaskConsumer) sendEmail(ctx context.Context, task Task, r TaskRecipient) error {
	return c.mailer.Send(ctx, email.Email{
		From:    task.From,
		To:      r.Address,
		Subject: task.Subject,
		Text:    task.Body,
	})
}

func (c *TaskConsumer) deliverMailbox(ctx context.Context, task Task, r TaskRecipient) error {
	return c.mailbox.Deliver(ctx, clubhouse.Post{
		PersonID: r.PersonID,
		SenderID: task.SenderID,
		Subject:  task.Subject,
		Body:     task.Body,
	})
}
