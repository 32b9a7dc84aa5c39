package legal

import (
	"time"

	"github.com/google/uuid"
)

// Ownership is embedded by every owner-scoped record.
type Ownership struct {
	ID        string    `gorm:"column:id;primaryKey;size:64;not null" json:"id"`
	OwnerID   string    `gorm:"column:owner_id;size:64;not null;index" json:"-"`
	Version   int64     `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index;autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false" json:"updatedAt"`
}

// Owned exposes the ownership metadata to the generic repository.
func (o *Ownership) Owned() *Ownership {
	return o
}

// IDProvider issues identifiers for new records.
type IDProvider interface {
	NewID() (string, error)
}

type uuidProvider struct{}

// NewUUIDProvider constructs an IDProvider that issues UUIDv7 identifiers.
func NewUUIDProvider() IDProvider {
	return &uuidProvider{}
}

func (p *uuidProvider) NewID() (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return value.String(), nil
}
