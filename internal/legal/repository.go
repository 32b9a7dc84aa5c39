package legal

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Record is satisfied by pointers to structs embedding Ownership.
type Record[T any] interface {
	*T
	Owned() *Ownership
}

// Input is a typed request body that can validate itself and patch a record.
type Input[T any] interface {
	Validate(forCreate bool) error
	Apply(record *T)
	ExpectedVersion() *int64
}

// VersionGuard is embedded by inputs to opt into optimistic concurrency on update.
type VersionGuard struct {
	Version *int64 `json:"version"`
}

// ExpectedVersion returns the version the caller last observed, if supplied.
func (g VersionGuard) ExpectedVersion() *int64 {
	return g.Version
}

// RepositoryConfig describes a repository for one resource.
type RepositoryConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
	// Resource prefixes operation codes, e.g. "cases".
	Resource string
	// Filters maps accepted list query parameters to columns.
	Filters map[string]string
}

// Repository provides owner-scoped CRUD for a single record type.
type Repository[T any, P Record[T]] struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider IDProvider
	logger     *zap.Logger
	resource   string
	filters    map[string]string
}

// NewRepository constructs a repository.
func NewRepository[T any, P Record[T]](cfg RepositoryConfig) (*Repository[T, P], error) {
	operation := cfg.Resource + ".repository.new"
	if cfg.Database == nil {
		return nil, newServiceError(operation, "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(operation, "missing_id_provider", errMissingIDProvider)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	filters := make(map[string]string, len(cfg.Filters))
	for param, column := range cfg.Filters {
		filters[param] = column
	}
	return &Repository[T, P]{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		logger:     logger,
		resource:   cfg.Resource,
		filters:    filters,
	}, nil
}

// Resource returns the resource name used in operation codes.
func (r *Repository[T, P]) Resource() string {
	return r.resource
}

// List returns the owner's records, newest first. Unknown filter keys and empty values are ignored.
func (r *Repository[T, P]) List(ctx context.Context, ownerID string, filters map[string]string) ([]T, error) {
	operation := r.resource + ".list"
	if strings.TrimSpace(ownerID) == "" {
		return nil, newServiceError(operation, "missing_owner_id", errMissingOwnerID)
	}

	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	for param, value := range filters {
		column, ok := r.filters[param]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		query = query.Where(column+" = ?", value)
	}

	records := []T{}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		logError(r.logger, operation, "query_failed", err, zap.String("owner_id", ownerID))
		return nil, newServiceError(operation, "query_failed", err)
	}
	return records, nil
}

// Get loads one owned record.
func (r *Repository[T, P]) Get(ctx context.Context, ownerID, id string) (T, error) {
	return r.take(ctx, r.db, r.resource+".get", ownerID, id)
}

// Create validates the input, applies it to a fresh record and inserts it.
func (r *Repository[T, P]) Create(ctx context.Context, ownerID string, input Input[T]) (T, error) {
	operation := r.resource + ".create"
	var record T
	if err := input.Validate(true); err != nil {
		return record, newServiceError(operation, "invalid_input", err)
	}
	input.Apply(&record)
	return r.Insert(ctx, ownerID, &record)
}

// Insert stores a prepared record under the owner, assigning identity and timestamps.
func (r *Repository[T, P]) Insert(ctx context.Context, ownerID string, record *T) (T, error) {
	operation := r.resource + ".create"
	if strings.TrimSpace(ownerID) == "" {
		return *record, newServiceError(operation, "missing_owner_id", errMissingOwnerID)
	}

	id, err := r.idProvider.NewID()
	if err != nil {
		logError(r.logger, operation, "id_generation_failed", err)
		return *record, newServiceError(operation, "id_generation_failed", err)
	}
	now := r.clock().UTC()
	meta := P(record).Owned()
	meta.ID = id
	meta.OwnerID = ownerID
	meta.Version = 1
	meta.CreatedAt = now
	meta.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(P(record)).Error; err != nil {
		logError(r.logger, operation, "insert_failed", err, zap.String("owner_id", ownerID))
		return *record, newServiceError(operation, "insert_failed", err)
	}
	return *record, nil
}

// Update applies a partial input to an owned record. When the input carries a version
// that differs from the stored one the update is rejected with ErrStaleVersion.
func (r *Repository[T, P]) Update(ctx context.Context, ownerID, id string, input Input[T]) (T, error) {
	operation := r.resource + ".update"
	var updated T
	if err := input.Validate(false); err != nil {
		return updated, newServiceError(operation, "invalid_input", err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := r.take(ctx, tx, operation, ownerID, id)
		if err != nil {
			return err
		}
		meta := P(&record).Owned()
		previousVersion := meta.Version
		if expected := input.ExpectedVersion(); expected != nil && *expected != previousVersion {
			return newServiceError(operation, "stale_version", ErrStaleVersion)
		}

		input.Apply(&record)
		meta.ID = id
		meta.OwnerID = ownerID
		meta.Version = previousVersion + 1
		meta.UpdatedAt = r.clock().UTC()

		result := tx.Model(P(&record)).
			Where("owner_id = ? AND version = ?", ownerID, previousVersion).
			Select("*").
			Omit("id", "owner_id", "created_at").
			Updates(P(&record))
		if result.Error != nil {
			logError(r.logger, operation, "save_failed", result.Error,
				zap.String("owner_id", ownerID), zap.String("id", id))
			return newServiceError(operation, "save_failed", result.Error)
		}
		if result.RowsAffected == 0 {
			return newServiceError(operation, "stale_version", ErrStaleVersion)
		}
		updated = record
		return nil
	})
	if err != nil {
		return updated, err
	}
	return updated, nil
}

// Mutate applies fn to an owned record and saves it with a version bump.
func (r *Repository[T, P]) Mutate(ctx context.Context, ownerID, id string, fn func(record *T)) (T, error) {
	return r.Update(ctx, ownerID, id, mutation[T](fn))
}

// Delete removes an owned record and returns what was removed.
func (r *Repository[T, P]) Delete(ctx context.Context, ownerID, id string) (T, error) {
	operation := r.resource + ".delete"
	record, err := r.take(ctx, r.db, operation, ownerID, id)
	if err != nil {
		return record, err
	}
	result := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(P(new(T)))
	if result.Error != nil {
		logError(r.logger, operation, "delete_failed", result.Error,
			zap.String("owner_id", ownerID), zap.String("id", id))
		return record, newServiceError(operation, "delete_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return record, newServiceError(operation, "not_found", ErrNotFound)
	}
	return record, nil
}

// DeleteWhere removes every owned record matching column = value and returns them.
func (r *Repository[T, P]) DeleteWhere(ctx context.Context, ownerID, column, value string) ([]T, error) {
	operation := r.resource + ".delete_where"
	records := []T{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ? AND "+column+" = ?", ownerID, value).Find(&records).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Where("owner_id = ? AND "+column+" = ?", ownerID, value).Delete(P(new(T))).Error
	})
	if err != nil {
		logError(r.logger, operation, "delete_failed", err, zap.String("owner_id", ownerID))
		return nil, newServiceError(operation, "delete_failed", err)
	}
	return records, nil
}

func (r *Repository[T, P]) take(ctx context.Context, db *gorm.DB, operation, ownerID, id string) (T, error) {
	var record T
	if strings.TrimSpace(ownerID) == "" {
		return record, newServiceError(operation, "missing_owner_id", errMissingOwnerID)
	}
	err := db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Take(P(&record)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return record, newServiceError(operation, "not_found", ErrNotFound)
	}
	if err != nil {
		logError(r.logger, operation, "query_failed", err,
			zap.String("owner_id", ownerID), zap.String("id", id))
		return record, newServiceError(operation, "query_failed", err)
	}
	return record, nil
}

type mutation[T any] func(record *T)

func (m mutation[T]) Validate(bool) error     { return nil }
func (m mutation[T]) Apply(record *T)         { m(record) }
func (m mutation[T]) ExpectedVersion() *int64 { return nil }
