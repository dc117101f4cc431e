package relational

import (
	"context"
	"errors"
	"fmt"

	"mediahub/internal/core/domain"
	"mediahub/internal/core/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) ports.UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user and its initial role assignments in one
// transaction. The generated id is written back to user.ID.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	model := userModel{
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		Points:       user.Points,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			return classify(err, "user %q", user.Name)
		}
		for _, roleID := range user.RoleIDs {
			link := userRoleModel{UserID: model.ID, RoleID: uint64(roleID)}
			if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
				return classify(err, "role %d for user %q", roleID, user.Name)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	user.ID = domain.UserID(model.ID)
	user.CreatedAt = model.CreatedAt
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var model userModel
	if err := r.db.WithContext(ctx).First(&model, uint64(id)).Error; err != nil {
		return nil, classify(err, "user %d", id)
	}
	return r.withRoles(ctx, &model)
}

func (r *UserRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	var model userModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		return nil, classify(err, "user %q", name)
	}
	return r.withRoles(ctx, &model)
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	var models []userModel
	q := r.db.WithContext(ctx).Order("id")
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*domain.User, 0, len(models))
	for i := range models {
		user, err := r.withRoles(ctx, &models[i])
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	res := r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", uint64(user.ID)).
		Updates(map[string]interface{}{
			"name":          user.Name,
			"password_hash": user.PasswordHash,
			"points":        user.Points,
		})
	if res.Error != nil {
		return classify(res.Error, "user %q", user.Name)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", user.ID, domain.ErrNotFound)
	}
	return nil
}

// AddPoints applies delta atomically in the database.
func (r *UserRepository) AddPoints(ctx context.Context, id domain.UserID, delta int64) error {
	res := r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", uint64(id)).
		Update("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("failed to add points to user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// AssignRole is idempotent.
func (r *UserRepository) AssignRole(ctx context.Context, id domain.UserID, roleID domain.RoleID) error {
	link := userRoleModel{UserID: uint64(id), RoleID: uint64(roleID)}
	err := r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("role %d or user %d: %w", roleID, id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to assign role %d to user %d: %w", roleID, id, err)
	}
	return nil
}

func (r *UserRepository) UnassignRole(ctx context.Context, id domain.UserID, roleID domain.RoleID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", uint64(id), uint64(roleID)).
		Delete(&userRoleModel{})
	if res.Error != nil {
		return fmt.Errorf("failed to unassign role %d from user %d: %w", roleID, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("role %d on user %d: %w", roleID, id, domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) RoleIDs(ctx context.Context, id domain.UserID) ([]domain.RoleID, error) {
	var raw []uint64
	if err := r.db.WithContext(ctx).Model(&userRoleModel{}).
		Where("user_id = ?", uint64(id)).
		Order("role_id").
		Pluck("role_id", &raw).Error; err != nil {
		return nil, fmt.Errorf("failed to load roles of user %d: %w", id, err)
	}
	out := make([]domain.RoleID, len(raw))
	for i, v := range raw {
		out[i] = domain.RoleID(v)
	}
	return out, nil
}

func (r *UserRepository) withRoles(ctx context.Context, model *userModel) (*domain.User, error) {
	roles, err := r.RoleIDs(ctx, domain.UserID(model.ID))
	if err != nil {
		return nil, err
	}
	return model.toDomain(roles), nil
}
