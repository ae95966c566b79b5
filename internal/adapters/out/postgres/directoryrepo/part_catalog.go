package directoryrepo

import (
	"context"
	"errors"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/ports"
	"maintenance/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormPartCatalog implements ports.PartCatalog. Prices are never cached.
type GormPartCatalog struct {
	db *gorm.DB
}

// NewGormPartCatalog creates a catalog reading the spare_parts table.
func NewGormPartCatalog(db *gorm.DB) *GormPartCatalog {
	return &GormPartCatalog{db: db}
}

func (c *GormPartCatalog) Get(ctx context.Context, id kernel.UUID) (ports.CatalogPart, error) {
	if err := id.Validate(); err != nil {
		return ports.CatalogPart{}, err
	}

	var dto SparePartDTO
	if err := c.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CatalogPart{}, errs.NewObjectNotFoundError("spare part", id.String())
		}
		return ports.CatalogPart{}, err
	}

	price, err := kernel.NewMoney(dto.UnitPrice)
	if err != nil {
		return ports.CatalogPart{}, err
	}
	return ports.CatalogPart{ID: id, Name: dto.Name, UnitPrice: price}, nil
}
