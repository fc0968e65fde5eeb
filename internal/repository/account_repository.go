package repository

import (
	"context"
	"errors"
	"time"

	"socialflow/internal/domain/account"
	"socialflow/internal/domain/workspace"
	flow_errors "socialflow/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresAccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &PostgresAccountRepository{db: db}
}

func (r *PostgresAccountRepository) Create(ctx context.Context, a *account.SocialAccount) error {
	res := r.db.WithContext(ctx).Create(a)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return flow_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

// GetByID is the webhook-ingress lookup: the account id arrives in the
// URL before any workspace context exists, and the workspace is derived
// from the row itself.
func (r *PostgresAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (account.SocialAccount, error) {
	var a account.SocialAccount
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account.SocialAccount{}, flow_errors.ErrNotFound
		}
		return account.SocialAccount{}, err
	}
	return a, nil
}

func (r *PostgresAccountRepository) GetForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (account.SocialAccount, error) {
	var a account.SocialAccount
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account.SocialAccount{}, flow_errors.ErrNotFound
		}
		return account.SocialAccount{}, err
	}
	return a, nil
}

func (r *PostgresAccountRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]account.SocialAccount, error) {
	var accounts []account.SocialAccount
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *PostgresAccountRepository) ListConnected(ctx context.Context) ([]account.SocialAccount, error) {
	var accounts []account.SocialAccount
	err := r.db.WithContext(ctx).
		Where("status = ?", account.StatusConnected).
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *PostgresAccountRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status account.Status) error {
	res := r.db.WithContext(ctx).
		Model(&account.SocialAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return flow_errors.ErrNotFound
	}
	return nil
}

type PostgresWorkspaceRepository struct {
	db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &PostgresWorkspaceRepository{db: db}
}

func (r *PostgresWorkspaceRepository) Create(ctx context.Context, w *workspace.Workspace) error {
	res := r.db.WithContext(ctx).Create(w)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return flow_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresWorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (workspace.Workspace, error) {
	var w workspace.Workspace
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return workspace.Workspace{}, flow_errors.ErrNotFound
		}
		return workspace.Workspace{}, err
	}
	return w, nil
}

func (r *PostgresWorkspaceRepository) AddMember(ctx context.Context, m *workspace.Member) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return flow_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresWorkspaceRepository) GetMember(ctx context.Context, workspaceID, userID uuid.UUID) (workspace.Member, error) {
	var m workspace.Member
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return workspace.Member{}, flow_errors.ErrNotFound
		}
		return workspace.Member{}, err
	}
	return m, nil
}

func (r *PostgresWorkspaceRepository) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]workspace.Member, error) {
	var members []workspace.Member
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
