package grant

import (
	"time"

	"lendledger/internal/confidential"
)

// PublicViewer is the wildcard viewer id: a grant for it opens the field to
// everyone.
const PublicViewer = "*"

// AccessGrant is one (field, viewer) disclosure right. Grants are additive
// and never revoked; terminal loan states keep their grants for audit.
type AccessGrant struct {
	ID        uint64               `gorm:"primaryKey;column:id" json:"-"`
	Field     confidential.FieldID `gorm:"size:128;column:field;uniqueIndex:idx_grants_field_viewer" json:"field"`
	Viewer    string               `gorm:"size:32;column:viewer;uniqueIndex:idx_grants_field_viewer" json:"viewer"`
	CreatedAt time.Time            `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (AccessGrant) TableName() string { return "access_grants" }
