package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agentdesk/contexts/identity-access/agent-directory/domain/entities"
	domainerrors "agentdesk/contexts/identity-access/agent-directory/domain/errors"
	"agentdesk/contexts/identity-access/agent-directory/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type userModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	Mobile       string    `gorm:"column:mobile;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;index"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

func (userModel) TableName() string {
	return "users"
}

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// AutoMigrate creates the users table owned by this module.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&userModel{}); err != nil {
		return r.logError("agent_directory_repo_auto_migrate_failed", err)
	}
	return nil
}

func (r *Repository) CreateUser(ctx context.Context, user entities.User) error {
	if strings.TrimSpace(user.UserID) == "" || strings.TrimSpace(user.Email) == "" || !user.Role.Valid() {
		r.logWarn("agent_directory_repo_create_user_invalid_input",
			"user_id", strings.TrimSpace(user.UserID),
			"role", string(user.Role),
		)
		return domainerrors.ErrInvalidAgentInput
	}
	row := userModel{
		ID:           strings.TrimSpace(user.UserID),
		Name:         user.Name,
		Email:        strings.ToLower(strings.TrimSpace(user.Email)),
		Mobile:       user.Mobile,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		CreatedAt:    user.CreatedAt.UTC(),
		UpdatedAt:    user.UpdatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrEmailExists
		}
		return r.logError("agent_directory_repo_create_user_failed", err,
			"user_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, r.logError("agent_directory_repo_get_user_by_email_failed", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetUser(ctx context.Context, userID string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, r.logError("agent_directory_repo_get_user_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListAgents(ctx context.Context) ([]entities.User, error) {
	var rows []userModel
	if err := r.db.WithContext(ctx).
		Where("role = ?", string(entities.RoleAgent)).
		Order("created_at DESC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("agent_directory_repo_list_agents_failed", err)
	}
	agents := make([]entities.User, 0, len(rows))
	for _, row := range rows {
		agents = append(agents, row.toEntity())
	}
	return agents, nil
}

func (r *Repository) DeleteAgent(ctx context.Context, userID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", strings.TrimSpace(userID), string(entities.RoleAgent)).
		Delete(&userModel{})
	if result.Error != nil {
		return r.logError("agent_directory_repo_delete_agent_failed", result.Error,
			"user_id", strings.TrimSpace(userID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

func (m userModel) toEntity() entities.User {
	return entities.User{
		UserID:       m.ID,
		Name:         m.Name,
		Email:        m.Email,
		Mobile:       m.Mobile,
		PasswordHash: m.PasswordHash,
		Role:         entities.Role(m.Role),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "identity-access/agent-directory",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("agent directory repository operation failed", fields...)
	return err
}

func (r *Repository) logWarn(event string, attrs ...any) {
	fields := make([]any, 0, len(attrs)+6)
	fields = append(fields,
		"event", event,
		"module", "identity-access/agent-directory",
		"layer", "adapter",
	)
	fields = append(fields, attrs...)
	r.logger.Warn("agent directory repository warning", fields...)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.UserRepository = (*Repository)(nil)
