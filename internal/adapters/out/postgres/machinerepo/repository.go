package machinerepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"maintenance/internal/adapters/out/postgres/dbutil"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/machine"
	"maintenance/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormMachineRepository implements ports.MachineRepository using GORM.
type GormMachineRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormMachineRepository creates a repository bound to db, usually a transaction.
func NewGormMachineRepository(db *gorm.DB, tracker aggregateTracker) *GormMachineRepository {
	return &GormMachineRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add registers a new machine. A duplicate serial is a conflict.
func (r *GormMachineRepository) Add(ctx context.Context, aggregate *machine.Machine) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return dbutil.Translate("machine", err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the machine only while its stored status equals expected.
func (r *GormMachineRepository) Update(ctx context.Context, aggregate *machine.Machine, expected machine.Status) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := dbutil.CompareAndSwap(ctx, r.db, dto.TableName(), dto.ID, expected.String(), mutableColumns(dto, time.Now().UTC())); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormMachineRepository) Get(ctx context.Context, id kernel.UUID) (*machine.Machine, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto MachineDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("machine", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormMachineRepository) GetBySerial(ctx context.Context, serial string) (*machine.Machine, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, machine.ErrSerialIsRequired
	}

	var dto MachineDTO
	if err := r.db.WithContext(ctx).First(&dto, "serial = ?", serial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("machine", serial)
		}
		return nil, err
	}

	return toDomain(dto)
}

// AppendLog inserts one status history row.
func (r *GormMachineRepository) AppendLog(ctx context.Context, entry machine.StatusLog) error {
	if err := errors.Join(entry.ID.Validate(), entry.MachineID.Validate()); err != nil {
		return err
	}

	dto := logFromDomain(entry)
	return r.db.WithContext(ctx).Create(&dto).Error
}
