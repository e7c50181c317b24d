package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/ego-component/egorm"
	"gorm.io/gorm"

	"github.com/rangerops/clubhouse-rbs/internal/errs"
)

type AlertDAO interface {
	GetByID(ctx context.Context, id int64) (Alert, error)
	List(ctx context.Context) ([]Alert, error)
}

// Alert is administrator-maintained reference data. The engine never writes it.
type Alert struct {
	ID      int64  `gorm:"primaryKey"`
	Title   string `gorm:"type:VARCHAR(255);NOT NULL"`
	OnPlaya bool   `gorm:"NOT NULL;DEFAULT:false;comment:'relevant only while the event runs'"`
	Mode    string `gorm:"type:ENUM('simple','has_position','has_slot','has_status','has_restrictions','has_muster_position');NOT NULL"`
	Ctime   int64
	Utime   int64
}

func (Alert) TableName() string {
	return "alert"
}

type alertDAO struct {
	db *egorm.Component
}

func NewAlertDAO(db *egorm.Component) AlertDAO {
	return &alertDAO{db: db}
}

func (d *alertDAO) GetByID(ctx context.Context, id int64) (Alert, error) {
	var a Alert
	err := d.db.WithContext(ctx).First(&a, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Alert{}, fmt.Errorf("%w: id=%d", errs.ErrAlertNotFound, id)
		}
		return Alert{}, err
	}
	return a, nil
}

func (d *alertDAO) List(ctx context.Context) ([]Alert, error) {
	var as []Alert
	err := d.db.WithContext(ctx).Order("id").Find(&as).Error
	return as, err
}
