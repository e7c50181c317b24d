package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	dlock "github.com/meoying/dlock-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
	"github.com/rangerops/clubhouse-rbs/internal/errs"
	"github.com/rangerops/clubhouse-rbs/internal/service/gateway/clubhouse"
	"github.com/rangerops/clubhouse-rbs/internal/service/gateway/email"
	"github.com/rangerops/clubhouse-rbs/internal/service/gateway/sms"
	smsmocks "github.com/rangerops/clubhouse-rbs/internal/service/gateway/sms/mocks"
)

type fakeLock struct {
	lockErr error
}

func (f *fakeLock) Lock(context.Context) error    { return f.lockErr }
func (f *fakeLock) Unlock(context.Context) error  { return nil }
func (f *fakeLock) Refresh(context.Context) error { return nil }

type fakeLockClient struct {
	lockErr error
}

func (f *fakeLockClient) NewLock(_ context.Context, _ string, _ time.Duration) (dlock.Lock, error) {
	return &fakeLock{lockErr: f.lockErr}, nil
}

type recordingMailer struct {
	sent []email.Email
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg email.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type recordingMailbox struct {
	posts []clubhouse.Post
	err   error
}

func (m *recordingMailbox) Deliver(_ context.Context, post clubhouse.Post) error {
	if m.err != nil {
		return m.err
	}
	m.posts = append(m.posts, post)
	return nil
}

func seedFailedBroadcast(t *testing.T, broadcasts *stubBroadcastRepo, messages *memMessageRepo) domain.Broadcast {
	t.Helper()
	b, err := broadcasts.Create(context.Background(), domain.Broadcast{
		ID:            77,
		SenderID:      99,
		AlertID:       10,
		SMSMessage:    "[Rangers] gate update (reply STOP to opt out)",
		EmailMessage:  "Gate closes at midnight.",
		Subject:       "Burn night",
		SenderAddress: "rangers@example.org",
		SentSMS:       true,
		SentEmail:     true,
	})
	require.NoError(t, err)
	return b
}

func TestRetry_ResolvesFailedRowsInPlace(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	broadcasts := &stubBroadcastRepo{}
	messages := &memMessageRepo{}
	b := seedFailedBroadcast(t, broadcasts, messages)

	failedSMS, _ := messages.RecordAttempt(context.Background(), domain.Message{
		BroadcastID: b.ID, PersonID: 1, Channel: domain.ChannelSMS,
		Address: "+14155551212", Direction: domain.DirectionOutbound,
		Status: domain.StatusFailed, Body: b.SMSMessage,
	})
	failedEmail, _ := messages.RecordAttempt(context.Background(), domain.Message{
		BroadcastID: b.ID, PersonID: 2, Channel: domain.ChannelEmail,
		Address: "quiet@example.org", Direction: domain.DirectionOutbound,
		Status: domain.StatusFailed,
	})
	sentRow, _ := messages.RecordAttempt(context.Background(), domain.Message{
		BroadcastID: b.ID, PersonID: 3, Channel: domain.ChannelSMS,
		Address: "+14155550000", Direction: domain.DirectionOutbound,
		Status: domain.StatusSent,
	})

	gateway := smsmocks.NewMockClient(ctrl)
	gateway.EXPECT().Send(gomock.Any(), sms.SendReq{To: "+14155551212", Body: b.SMSMessage}).
		Return(sms.SendResp{ProviderID: "SM2"}, nil)
	mailer := &recordingMailer{}

	rc := NewRetryCoordinator(broadcasts, messages, gateway, mailer,
		&recordingMailbox{}, &fakeLockClient{})

	before, _ := messages.CountByBroadcast(context.Background(), b.ID)
	summary, err := rc.Retry(context.Background(), b.ID)
	require.NoError(t, err)
	after, _ := messages.CountByBroadcast(context.Background(), b.ID)

	assert.Equal(t, before, after, "retry must never append rows")
	assert.Equal(t, 1, summary.SMSSuccesses)
	assert.Equal(t, 0, summary.SMSFails)
	assert.Equal(t, 1, summary.EmailSuccesses)

	assert.Equal(t, domain.StatusSent, messages.rows[int(failedSMS.ID)-1].Status)
	assert.Equal(t, domain.StatusSent, messages.rows[int(failedEmail.ID)-1].Status)
	assert.Equal(t, domain.StatusSent, messages.rows[int(sentRow.ID)-1].Status)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "rangers@example.org", mailer.sent[0].From)
	assert.Equal(t, "quiet@example.org", mailer.sent[0].To)
}

func TestRetry_FailedAgainStaysFailed(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	broadcasts := &stubBroadcastRepo{}
	messages := &memMessageRepo{}
	b := seedFailedBroadcast(t, broadcasts, messages)

	row, _ := messages.RecordAttempt(context.Background(), domain.Message{
		BroadcastID: b.ID, PersonID: 1, Channel: domain.ChannelSMS,
		Address: "+14155551212", Direction: domain.DirectionOutbound,
		Status: domain.StatusFailed, Body: b.SMSMessage,
	})

	gateway := smsmocks.NewMockClient(ctrl)
	gateway.EXPECT().Send(gomock.Any(), gomock.Any()).
		Return(sms.SendResp{}, errors.New("still down"))

	rc := NewRetryCoordinator(broadcasts, messages, gateway, &recordingMailer{},
		&recordingMailbox{}, &fakeLockClient{})

	summary, err := rc.Retry(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SMSFails)
	assert.Equal(t, domain.StatusFailed, messages.rows[int(row.ID)-1].Status)
}

func TestRetry_ClubhouseFailureIsCounted(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	broadcasts := &stubBroadcastRepo{}
	messages := &memMessageRepo{}
	b := seedFailedBroadcast(t, broadcasts, messages)

	row, _ := messages.RecordAttempt(context.Background(), domain.Message{
		BroadcastID: b.ID, PersonID: 1, Channel: domain.ChannelClubhouse,
		Address: "Dusty", Direction: domain.DirectionOutbound,
		Status: domain.StatusFailed,
	})

	rc := NewRetryCoordinator(broadcasts, messages, smsmocks.NewMockClient(ctrl),
		&recordingMailer{}, &recordingMailbox{err: errors.New("mailbox store down")},
		&fakeLockClient{})

	summary, err := rc.Retry(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.ClubhouseQueued)
	assert.Equal(t, 1, summary.ClubhouseFails, "a still-failing mailbox write must be visible")
	assert.Equal(t, domain.StatusFailed, messages.rows[int(row.ID)-1].Status)
}

func TestRetry_NoFailedRows(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	broadcasts := &stubBroadcastRepo{}
	messages := &memMessageRepo{}
	b := seedFailedBroadcast(t, broadcasts, messages)

	rc := NewRetryCoordinator(broadcasts, messages, smsmocks.NewMockClient(ctrl),
		&recordingMailer{}, &recordingMailbox{}, &fakeLockClient{})

	summary, err := rc.Retry(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{BroadcastID: b.ID}, summary)
}

func TestRetry_UnknownBroadcast(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	rc := NewRetryCoordinator(&stubBroadcastRepo{}, &memMessageRepo{},
		smsmocks.NewMockClient(ctrl), &recordingMailer{}, &recordingMailbox{},
		&fakeLockClient{})

	_, err := rc.Retry(context.Background(), 404)
	assert.ErrorIs(t, err, errs.ErrBroadcastNotFound)
}

func TestRetry_LockHeldElsewhere(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	broadcasts := &stubBroadcastRepo{}
	messages := &memMessageRepo{}
	b := seedFailedBroadcast(t, broadcasts, messages)

	rc := NewRetryCoordinator(broadcasts, messages, smsmocks.NewMockClient(ctrl),
		&recordingMailer{}, &recordingMailbox{},
		&fakeLockClient{lockErr: errors.New("held")})

	_, err := rc.Retry(context.Background(), b.ID)
	assert.ErrorIs(t, err, errs.ErrRetryInProgress)
}
