package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ego-component/egorm"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/rangerops/clubhouse-rbs/internal/errs"
)

type PersonDAO interface {
	GetByID(ctx context.Context, id int64) (Person, error)
	// FindByPhone returns the person holding the number in either slot.
	FindByPhone(ctx context.Context, number string) (Person, error)
	// UpdatePhones persists the phone columns of one person.
	UpdatePhones(ctx context.Context, p Person) error

	// Recipient-selection queries. All of them honor message_allowed and
	// return rows in callsign order.
	ListMessageable(ctx context.Context) ([]Person, error)
	ListByStatuses(ctx context.Context, statuses []string) ([]Person, error)
	ListByPosition(ctx context.Context, positionID int64, signedUp bool) ([]Person, error)
	ListBySlot(ctx context.Context, slotID int64) ([]Person, error)
	ListByRestrictions(ctx context.Context, onSite, attending, training bool) ([]Person, error)

	CountMessageable(ctx context.Context) (int64, error)
	CountByStatuses(ctx context.Context, statuses []string) (int64, error)
	CountByPosition(ctx context.Context, positionID int64, signedUp bool) (int64, error)
	CountBySlot(ctx context.Context, slotID int64) (int64, error)
	CountByRestrictions(ctx context.Context, onSite, attending, training bool) (int64, error)
}

// Person is the phone- and selection-relevant projection of the personnel
// record. The CRUD layer owns the rest of its columns.
type Person struct {
	ID             int64  `gorm:"primaryKey"`
	Callsign       string `gorm:"type:VARCHAR(64);NOT NULL;uniqueIndex:idx_callsign"`
	Status         string `gorm:"type:VARCHAR(32);NOT NULL;index:idx_status"`
	Email          string `gorm:"type:VARCHAR(255)"`
	MessageAllowed bool   `gorm:"NOT NULL;DEFAULT:true;comment:'authorization layer decides this, we only read it'"`
	OnSite         bool   `gorm:"NOT NULL;DEFAULT:false"`
	Attending      bool   `gorm:"NOT NULL;DEFAULT:false"`
	Training       bool   `gorm:"NOT NULL;DEFAULT:false"`

	// Nullable so unset slots do not collide on the unique indexes.
	OnPlayaPhone     *string `gorm:"type:VARCHAR(20);uniqueIndex:idx_on_playa_phone"`
	OffPlayaPhone    *string `gorm:"type:VARCHAR(20);uniqueIndex:idx_off_playa_phone"`
	OnPlayaVerified  bool   `gorm:"NOT NULL;DEFAULT:false"`
	OffPlayaVerified bool   `gorm:"NOT NULL;DEFAULT:false"`
	OnPlayaStopped   bool   `gorm:"NOT NULL;DEFAULT:false"`
	OffPlayaStopped  bool   `gorm:"NOT NULL;DEFAULT:false"`
	OnPlayaCode      string `gorm:"type:VARCHAR(8)"`
	OffPlayaCode     string `gorm:"type:VARCHAR(8)"`

	Ctime int64
	Utime int64
}

func (Person) TableName() string {
	return "person"
}

// PersonPosition records position membership and signup state.
type PersonPosition struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	PersonID   int64 `gorm:"type:BIGINT;NOT NULL;uniqueIndex:idx_person_position,priority:1"`
	PositionID int64 `gorm:"type:BIGINT;NOT NULL;uniqueIndex:idx_person_position,priority:2;index:idx_position_id"`
	SignedUp   bool  `gorm:"NOT NULL;DEFAULT:false"`
}

func (PersonPosition) TableName() string {
	return "person_position"
}

// PersonSlot records a shift-slot signup.
type PersonSlot struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	PersonID int64 `gorm:"type:BIGINT;NOT NULL;uniqueIndex:idx_person_slot,priority:1"`
	SlotID   int64 `gorm:"type:BIGINT;NOT NULL;uniqueIndex:idx_person_slot,priority:2;index:idx_slot_id"`
}

func (PersonSlot) TableName() string {
	return "person_slot"
}

type personDAO struct {
	db *egorm.Component
}

func NewPersonDAO(db *egorm.Component) PersonDAO {
	return &personDAO{db: db}
}

func (d *personDAO) GetByID(ctx context.Context, id int64) (Person, error) {
	var p Person
	err := d.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Person{}, fmt.Errorf("%w: id=%d", errs.ErrPersonNotFound, id)
		}
		return Person{}, err
	}
	return p, nil
}

func (d *personDAO) FindByPhone(ctx context.Context, number string) (Person, error) {
	var p Person
	err := d.db.WithContext(ctx).
		Where("on_playa_phone = ? OR off_playa_phone = ?", number, number).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Person{}, fmt.Errorf("%w: number=%s", errs.ErrPersonNotFound, number)
		}
		return Person{}, err
	}
	return p, nil
}

func (d *personDAO) UpdatePhones(ctx context.Context, p Person) error {
	err := d.db.WithContext(ctx).Model(&Person{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"on_playa_phone":     p.OnPlayaPhone,
			"off_playa_phone":    p.OffPlayaPhone,
			"on_playa_verified":  p.OnPlayaVerified,
			"off_playa_verified": p.OffPlayaVerified,
			"on_playa_stopped":   p.OnPlayaStopped,
			"off_playa_stopped":  p.OffPlayaStopped,
			"on_playa_code":      p.OnPlayaCode,
			"off_playa_code":     p.OffPlayaCode,
			"utime":              time.Now().UnixMilli(),
		}).Error
	if isUniqueConstraintError(err) {
		// Lost the check-then-set race on a phone column.
		return fmt.Errorf("%w", errs.ErrPhoneNumberTaken)
	}
	return err
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	me := new(mysql.MySQLError)
	if errors.As(err, &me) {
		const uniqueIndexErrNo uint16 = 1062
		return me.Number == uniqueIndexErrNo
	}
	return false
}

func (d *personDAO) messageable(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).Model(&Person{}).
		Where("message_allowed = ?", true)
}

func (d *personDAO) ListMessageable(ctx context.Context) ([]Person, error) {
	var ps []Person
	err := d.messageable(ctx).Order("callsign").Find(&ps).Error
	return ps, err
}

func (d *personDAO) CountMessageable(ctx context.Context) (int64, error) {
	var n int64
	err := d.messageable(ctx).Count(&n).Error
	return n, err
}

func (d *personDAO) ListByStatuses(ctx context.Context, statuses []string) ([]Person, error) {
	var ps []Person
	err := d.messageable(ctx).
		Where("status IN ?", statuses).
		Order("callsign").
		Find(&ps).Error
	return ps, err
}

func (d *personDAO) CountByStatuses(ctx context.Context, statuses []string) (int64, error) {
	var n int64
	err := d.messageable(ctx).Where("status IN ?", statuses).Count(&n).Error
	return n, err
}

func (d *personDAO) positionQuery(ctx context.Context, positionID int64, signedUp bool) *gorm.DB {
	return d.messageable(ctx).
		Joins("JOIN person_position pp ON pp.person_id = person.id").
		Where("pp.position_id = ? AND pp.signed_up = ?", positionID, signedUp)
}

func (d *personDAO) ListByPosition(ctx context.Context, positionID int64, signedUp bool) ([]Person, error) {
	var ps []Person
	err := d.positionQuery(ctx, positionID, signedUp).Order("callsign").Find(&ps).Error
	return ps, err
}

func (d *personDAO) CountByPosition(ctx context.Context, positionID int64, signedUp bool) (int64, error) {
	var n int64
	err := d.positionQuery(ctx, positionID, signedUp).Count(&n).Error
	return n, err
}

func (d *personDAO) slotQuery(ctx context.Context, slotID int64) *gorm.DB {
	return d.messageable(ctx).
		Joins("JOIN person_slot ps ON ps.person_id = person.id").
		Where("ps.slot_id = ?", slotID)
}

func (d *personDAO) ListBySlot(ctx context.Context, slotID int64) ([]Person, error) {
	var ps []Person
	err := d.slotQuery(ctx, slotID).Order("callsign").Find(&ps).Error
	return ps, err
}

func (d *personDAO) CountBySlot(ctx context.Context, slotID int64) (int64, error) {
	var n int64
	err := d.slotQuery(ctx, slotID).Count(&n).Error
	return n, err
}

func (d *personDAO) restrictionsQuery(ctx context.Context, onSite, attending, training bool) *gorm.DB {
	q := d.messageable(ctx)
	if onSite {
		q = q.Where("on_site = ?", true)
	}
	if attending {
		q = q.Where("attending = ?", true)
	}
	if training {
		q = q.Where("training = ?", true)
	}
	return q
}

func (d *personDAO) ListByRestrictions(ctx context.Context, onSite, attending, training bool) ([]Person, error) {
	var ps []Person
	err := d.restrictionsQuery(ctx, onSite, attending, training).Order("callsign").Find(&ps).Error
	return ps, err
}

func (d *personDAO) CountByRestrictions(ctx context.Context, onSite, attending, training bool) (int64, error) {
	var n int64
	err := d.restrictionsQuery(ctx, onSite, attending, training).Count(&n).Error
	return n, err
}
