package workspace

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is the tenant boundary. Every inbox entity belongs to exactly
// one workspace and every query must filter by workspace id.
type Workspace struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Slug      string    `gorm:"type:varchar(255);uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member represents workspace membership for a user managed by the
// external identity service.
type Member struct {
	WorkspaceID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Role        string    `gorm:"type:varchar(20);not null;default:'MEMBER'"`
	JoinedAt    time.Time
}

const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

func (Workspace) TableName() string {
	return "workspaces"
}

func (Member) TableName() string {
	return "workspace_members"
}
