package database

import (
	"fmt"

	"socialflow/internal/domain/account"
	"socialflow/internal/domain/automation"
	"socialflow/internal/domain/inbox"
	"socialflow/internal/domain/job"
	"socialflow/internal/domain/metrics"
	"socialflow/internal/domain/notification"
	"socialflow/internal/domain/workspace"
)

// Migrate creates or updates every table the application owns.
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	return DB.AutoMigrate(
		&workspace.Workspace{},
		&workspace.Member{},
		&account.SocialAccount{},
		&inbox.InboxConversation{},
		&inbox.InboxItem{},
		&inbox.InboxReply{},
		&inbox.InboxInternalNote{},
		&inbox.InboxTag{},
		&inbox.InboxItemTag{},
		&inbox.SavedReply{},
		&inbox.InboxContact{},
		&automation.Rule{},
		&metrics.PostTarget{},
		&metrics.PostMetricSnapshot{},
		&notification.Notification{},
		&job.Job{},
	)
}

// TableExists reports whether GORM sees the named table.
func TableExists(name string) (bool, error) {
	if DB == nil {
		return false, fmt.Errorf("database not connected")
	}
	return DB.Migrator().HasTable(name), nil
}
