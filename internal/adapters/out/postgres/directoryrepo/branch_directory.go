package directoryrepo

import (
	"context"
	"errors"
	"time"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/errs"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

// CachedBranchDirectory implements ports.BranchDirectory with lookups kept in
// memory for ttl.
type CachedBranchDirectory struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewCachedBranchDirectory keeps each branch for ttl and purges every 2*ttl.
func NewCachedBranchDirectory(db *gorm.DB, ttl time.Duration) *CachedBranchDirectory {
	return &CachedBranchDirectory{
		db:    db,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Get serves from the cache and falls back to the branches table.
func (d *CachedBranchDirectory) Get(ctx context.Context, id kernel.UUID) (kernel.Branch, error) {
	if err := id.Validate(); err != nil {
		return kernel.Branch{}, err
	}
	if cached, ok := d.cache.Get(id.String()); ok {
		return cached.(kernel.Branch), nil
	}

	var dto BranchDTO
	if err := d.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return kernel.Branch{}, errs.NewObjectNotFoundError("branch", id.String())
		}
		return kernel.Branch{}, err
	}

	branchType := kernel.BranchType(dto.Type)
	if err := branchType.Validate(); err != nil {
		return kernel.Branch{}, err
	}
	branch := kernel.Branch{ID: id, Name: dto.Name, Type: branchType}
	d.cache.SetDefault(id.String(), branch)
	return branch, nil
}
