package phone

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
	"github.com/rangerops/clubhouse-rbs/internal/errs"
	"github.com/rangerops/clubhouse-rbs/internal/service/gateway/sms"
	smsmocks "github.com/rangerops/clubhouse-rbs/internal/service/gateway/sms/mocks"
)

// fakePersonRepo keeps person state in memory so tests can assert on the
// mutations SetNumbers and Confirm perform.
type fakePersonRepo struct {
	people map[int64]domain.Person
}

func newFakePersonRepo(people ...domain.Person) *fakePersonRepo {
	m := make(map[int64]domain.Person, len(people))
	for _, p := range people {
		m[p.ID] = p
	}
	return &fakePersonRepo{people: m}
}

func (f *fakePersonRepo) GetByID(_ context.Context, id int64) (domain.Person, error) {
	p, ok := f.people[id]
	if !ok {
		return domain.Person{}, fmt.Errorf("%w: id=%d", errs.ErrPersonNotFound, id)
	}
	return p, nil
}

func (f *fakePersonRepo) FindOwner(_ context.Context, number string) (domain.Person, error) {
	for _, p := range f.people {
		if p.OnPlaya.Number == number || p.OffPlaya.Number == number {
			return p, nil
		}
	}
	return domain.Person{}, fmt.Errorf("%w: %s", errs.ErrPersonNotFound, number)
}

func (f *fakePersonRepo) UpdatePhones(_ context.Context, p domain.Person) error {
	stored, ok := f.people[p.ID]
	if !ok {
		return fmt.Errorf("%w: id=%d", errs.ErrPersonNotFound, p.ID)
	}
	stored.OnPlaya = p.OnPlaya
	stored.OffPlaya = p.OffPlaya
	f.people[p.ID] = stored
	return nil
}

func (f *fakePersonRepo) ListMessageable(context.Context) ([]domain.Recipient, error) {
	panic("not used")
}

func (f *fakePersonRepo) ListByStatuses(context.Context, []string) ([]domain.Recipient, error) {
	panic("not used")
}

func (f *fakePersonRepo) ListByPosition(context.Context, int64, bool) ([]domain.Recipient, error) {
	panic("not used")
}

func (f *fakePersonRepo) ListBySlot(context.Context, int64) ([]domain.Recipient, error) {
	panic("not used")
}

func (f *fakePersonRepo) ListByRestrictions(context.Context, bool, bool, bool) ([]domain.Recipient, error) {
	panic("not used")
}

func (f *fakePersonRepo) CountMessageable(context.Context) (int, error) { panic("not used") }

func (f *fakePersonRepo) CountByStatuses(context.Context, []string) (int, error) {
	panic("not used")
}

func (f *fakePersonRepo) CountByPosition(context.Context, int64, bool) (int, error) {
	panic("not used")
}

func (f *fakePersonRepo) CountBySlot(context.Context, int64) (int, error) { panic("not used") }

func (f *fakePersonRepo) CountByRestrictions(context.Context, bool, bool, bool) (int, error) {
	panic("not used")
}

// fakeMessageRepo records appended delivery-log rows.
type fakeMessageRepo struct {
	rows   []domain.Message
	nextID uint64
}

func (f *fakeMessageRepo) RecordAttempt(_ context.Context, m domain.Message) (domain.Message, error) {
	f.nextID++
	m.ID = f.nextID
	f.rows = append(f.rows, m)
	return m, nil
}

func (f *fakeMessageRepo) RecordAttempts(ctx context.Context, ms []domain.Message) ([]domain.Message, error) {
	result := make([]domain.Message, 0, len(ms))
	for _, m := range ms {
		created, _ := f.RecordAttempt(ctx, m)
		result = append(result, created)
	}
	return result, nil
}

func (f *fakeMessageRepo) UpdateAttemptStatus(_ context.Context, id uint64, status domain.MessageStatus) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Status = status
			return nil
		}
	}
	return errs.ErrMessageNotFound
}

func (f *fakeMessageRepo) ListByBroadcast(context.Context, uint64) ([]domain.Message, error) {
	panic("not used")
}

func (f *fakeMessageRepo) ListFailedByBroadcast(context.Context, uint64) ([]domain.Message, error) {
	panic("not used")
}

func (f *fakeMessageRepo) CountByBroadcast(context.Context, uint64) (int64, error) {
	panic("not used")
}

func TestSetNumbers_NewNumberGetsChallenge(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	persons := newFakePersonRepo(domain.Person{ID: 1, Callsign: "Dusty"})
	messages := &fakeMessageRepo{}
	gateway := smsmocks.NewMockClient(ctrl)
	gateway.EXPECT().Lookup(gomock.Any(), "+14155551212").Return(true, nil)
	gateway.EXPECT().Send(gomock.Any(), gomock.Any()).Return(sms.SendResp{ProviderID: "SM1"}, nil)

	svc := NewService(persons, messages, gateway)
	result, err := svc.SetNumbers(context.Background(), 1, "4155551212", "")
	require.NoError(t, err)

	assert.Equal(t, domain.SlotCodeSent, result.OnPlaya)
	assert.Equal(t, domain.SlotUnchanged, result.OffPlaya)

	stored := persons.people[1]
	assert.Equal(t, "+14155551212", stored.OnPlaya.Number)
	assert.False(t, stored.OnPlaya.Verified)
	assert.Len(t, stored.OnPlaya.Code, 4)

	require.Len(t, messages.rows, 1)
	row := messages.rows[0]
	assert.Equal(t, domain.StatusVerify, row.Status)
	assert.Equal(t, uint64(0), row.BroadcastID)
	assert.Equal(t, domain.DirectionOutbound, row.Direction)
	assert.Contains(t, row.Body, stored.OnPlaya.Code)
}

func TestSetNumbers_SameNumberUnchanged(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	persons := newFakePersonRepo(domain.Person{
		ID:      1,
		OnPlaya: domain.Phone{Number: "+14155551212", Verified: true},
	})
	// No gateway expectations: an unchanged number must not touch it.
	gateway := smsmocks.NewMockClient(ctrl)

	svc := NewService(persons, &fakeMessageRepo{}, gateway)
	result, err := svc.SetNumbers(context.Background(), 1, "415-555-1212", "")
	require.NoError(t, err)

	assert.Equal(t, domain.SlotUnchanged, result.OnPlaya)
	assert.True(t, persons.people[1].OnPlaya.Verified)
}

func TestSetNumbers_CopiesVerificationBetweenSlots(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	persons := newFakePersonRepo(domain.Person{
		ID:      1,
		OnPlaya: domain.Phone{Number: "+14155551212", Verified: true},
	})
	gateway := smsmocks.NewMockClient(ctrl)

	svc := NewService(persons, &fakeMessageRepo{}, gateway)
	result, err := svc.SetNumbers(context.Background(), 1, "+14155551212", "+14155551212")
	require.NoError(t, err)

	assert.Equal(t, domain.SlotUnchanged, result.OnPlaya)
	assert.Equal(t, domain.SlotUpdated, result.OffPlaya)

	stored := persons.people[1]
	assert.True(t, stored.OffPlaya.Verified, "verification must travel with the number")
	assert.Equal(t, stored.OnPlaya.Verified, stored.OffPlaya.Verified)
	assert.Equal(t, stored.OnPlaya.Stopped, stored.OffPlaya.Stopped)
}

func TestSetNumbers_LookupFailureKeepsUpdate(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	persons := newFakePersonRepo(domain.Person{ID: 1})
	gateway := smsmocks.NewMockClient(ctrl)
	gateway.EXPECT().Lookup(gomock.Any(), "+14155551212").
		Return(false, fmt.Errorf("%w: lookup unavailable", errs.ErrGatewayFailure))

	svc := NewService(persons, &fakeMessageRepo{}, gateway)
	result, err := svc.SetNumbers(context.Background(), 1, "4155551212", "")
	require.NoError(t, err)

	assert.Equal(t, domain.SlotSendFail, result.OnPlaya)
	stored := persons.people[1]
	assert.Equal(t, "+14155551212", stored.OnPlaya.Number, "update stands despite probe failure")
	assert.False(t, stored.OnPlaya.Verified)
	assert.Empty(t, stored.OnPlaya.Code, "no challenge without a successful probe")
}

func TestSetNumbers_NumberHeldByAnotherPerson(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	persons := newFakePersonRepo(
		domain.Person{ID: 1},
		domain.Person{ID: 2, Callsign: "Shadow", OnPlaya: domain.Phone{Number: "+14155551212"}},
	)
	gateway := smsmocks.NewMockClient(ctrl)

	svc := NewService(persons, &fakeMessageRepo{}, gateway)
	_, err := svc.SetNumbers(context.Background(), 1, "4155551212", "")
	assert.ErrorIs(t, err, errs.ErrPhoneNumberTaken)
	assert.ErrorIs(t, err, errs.ErrInvalidPhoneNumber,
		"ownership conflicts are one kind of invalid number")
	assert.Empty(t, persons.people[1].OnPlaya.Number)
}

func TestSetNumbers_ClearSlot(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	persons := newFakePersonRepo(domain.Person{
		ID:      1,
		OnPlaya: domain.Phone{Number: "+14155551212", Verified: true, Stopped: true},
	})
	gateway := smsmocks.NewMockClient(ctrl)

	svc := NewService(persons, &fakeMessageRepo{}, gateway)
	result, err := svc.SetNumbers(context.Background(), 1, "", "")
	require.NoError(t, err)

	assert.Equal(t, domain.SlotUpdated, result.OnPlaya)
	assert.Equal(t, domain.Phone{}, persons.people[1].OnPlaya)
}

func TestConfirm_Idempotent(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	persons := newFakePersonRepo(domain.Person{
		ID:      1,
		OnPlaya: domain.Phone{Number: "+14155551212", Verified: true},
	})
	svc := NewService(persons, &fakeMessageRepo{}, smsmocks.NewMockClient(ctrl))

	for i := 0; i < 2; i++ {
		outcome, err := svc.Confirm(context.Background(), 1, domain.SlotOnPlaya, "1234")
		require.NoError(t, err)
		assert.Equal(t, domain.ConfirmAlreadyVerified, outcome)
	}
}

func TestConfirm_NoMatchLeavesState(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	persons := newFakePersonRepo(domain.Person{
		ID:      1,
		OnPlaya: domain.Phone{Number: "+14155551212", Code: "0042"},
	})
	svc := NewService(persons, &fakeMessageRepo{}, smsmocks.NewMockClient(ctrl))

	outcome, err := svc.Confirm(context.Background(), 1, domain.SlotOnPlaya, "9999")
	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmNoMatch, outcome)
	assert.Equal(t, "0042", persons.people[1].OnPlaya.Code)
	assert.False(t, persons.people[1].OnPlaya.Verified)
}

func TestConfirm_SharedNumberVerifiesBothSlots(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	persons := newFakePersonRepo(domain.Person{
		ID:       1,
		OnPlaya:  domain.Phone{Number: "+14155551212", Code: "0042"},
		OffPlaya: domain.Phone{Number: "+14155551212", Code: "0042"},
	})
	svc := NewService(persons, &fakeMessageRepo{}, smsmocks.NewMockClient(ctrl))

	outcome, err := svc.Confirm(context.Background(), 1, domain.SlotOnPlaya, "0042")
	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmConfirmed, outcome)

	stored := persons.people[1]
	assert.True(t, stored.OnPlaya.Verified)
	assert.True(t, stored.OffPlaya.Verified)
	assert.Empty(t, stored.OnPlaya.Code)
	assert.Empty(t, stored.OffPlaya.Code)
}

func TestIssueChallenge_GatewayFailureRecordsFailedRow(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	persons := newFakePersonRepo(domain.Person{
		ID:      1,
		OnPlaya: domain.Phone{Number: "+14155551212"},
	})
	messages := &fakeMessageRepo{}
	gateway := smsmocks.NewMockClient(ctrl)
	gateway.EXPECT().Send(gomock.Any(), gomock.Any()).
		Return(sms.SendResp{}, fmt.Errorf("%w: 500", errs.ErrGatewayFailure))

	svc := NewService(persons, messages, gateway)
	sent, err := svc.IssueChallenge(context.Background(), 1, domain.SlotOnPlaya)
	assert.False(t, sent)
	assert.ErrorIs(t, err, errs.ErrGatewayFailure)

	require.Len(t, messages.rows, 1)
	assert.Equal(t, domain.StatusFailed, messages.rows[0].Status)
}

func TestHandleInbound_StopBothSlots(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	persons := newFakePersonRepo(domain.Person{
		ID:       1,
		OnPlaya:  domain.Phone{Number: "+14155551212", Verified: true},
		OffPlaya: domain.Phone{Number: "+14155551212", Verified: true},
	})
	messages := &fakeMessageRepo{}
	svc := NewService(persons, messages, smsmocks.NewMockClient(ctrl))

	err := svc.HandleInbound(context.Background(), "4155551212", "STOP")
	require.NoError(t, err)

	stored := persons.people[1]
	assert.True(t, stored.OnPlaya.Stopped)
	assert.True(t, stored.OffPlaya.Stopped)
	assert.Equal(t, stored.OnPlaya.Stopped, stored.OffPlaya.Stopped)

	require.Len(t, messages.rows, 1)
	assert.Equal(t, domain.DirectionInbound, messages.rows[0].Direction)
}

func TestHandleInbound_StartClearsStopped(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	persons := newFakePersonRepo(domain.Person{
		ID:      1,
		OnPlaya: domain.Phone{Number: "+14155551212", Verified: true, Stopped: true},
	})
	svc := NewService(persons, &fakeMessageRepo{}, smsmocks.NewMockClient(ctrl))

	err := svc.HandleInbound(context.Background(), "+14155551212", "start")
	require.NoError(t, err)
	assert.False(t, persons.people[1].OnPlaya.Stopped)
	assert.True(t, persons.people[1].OnPlaya.Verified, "opting back in keeps verification")
}

func TestHandleInbound_UnknownSenderStillLogged(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	persons := newFakePersonRepo()
	messages := &fakeMessageRepo{}
	svc := NewService(persons, messages, smsmocks.NewMockClient(ctrl))

	err := svc.HandleInbound(context.Background(), "+14155550000", "STOP")
	require.NoError(t, err)
	require.Len(t, messages.rows, 1)
	assert.Equal(t, int64(0), messages.rows[0].PersonID)
}
