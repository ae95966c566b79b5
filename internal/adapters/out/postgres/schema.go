package postgres

import (
	"fmt"

	"maintenance/internal/adapters/out/postgres/approvalrepo"
	"maintenance/internal/adapters/out/postgres/assignmentrepo"
	"maintenance/internal/adapters/out/postgres/auditrepo"
	"maintenance/internal/adapters/out/postgres/directoryrepo"
	"maintenance/internal/adapters/out/postgres/inventoryrepo"
	"maintenance/internal/adapters/out/postgres/ledgerrepo"
	"maintenance/internal/adapters/out/postgres/machinerepo"
	"maintenance/internal/adapters/out/postgres/notificationrepo"
	"maintenance/internal/adapters/out/postgres/transferrepo"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Models lists every table of the service in dependency order.
func Models() []any {
	return []any{
		&directoryrepo.BranchDTO{},
		&directoryrepo.SparePartDTO{},
		&machinerepo.MachineDTO{},
		&machinerepo.StatusLogDTO{},
		&transferrepo.OrderDTO{},
		&transferrepo.ItemDTO{},
		&assignmentrepo.AssignmentDTO{},
		&assignmentrepo.LogDTO{},
		&approvalrepo.RequestDTO{},
		&ledgerrepo.DebtDTO{},
		&ledgerrepo.PaymentDTO{},
		&inventoryrepo.SimCardDTO{},
		&inventoryrepo.PartStockDTO{},
		&auditrepo.EntryDTO{},
		&notificationrepo.SubscriptionDTO{},
		&notificationrepo.NotificationDTO{},
	}
}

// Migrate creates or alters the tables to match Models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Open connects with the named driver. The sqlite driver takes a file path
// as dsn, optionally with "?_busy_timeout=5000", and is meant for local runs
// and tests.
func Open(driver, dsn string, log logger.Interface) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true, Logger: log}

	switch driver {
	case DriverPostgres:
		return gorm.Open(postgres.Open(dsn), cfg)
	case DriverSQLite:
		return gorm.Open(sqlite.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
