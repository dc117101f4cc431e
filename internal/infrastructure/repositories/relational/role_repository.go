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

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) ports.RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	model := roleModel{Name: role.Name, Description: role.Description}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			return classify(err, "role %q", role.Name)
		}
		if len(role.Permissions) == 0 {
			return nil
		}
		rows := make([]rolePermissionModel, 0, len(role.Permissions))
		for _, code := range role.Permissions {
			rows = append(rows, rolePermissionModel{RoleID: model.ID, Code: code})
		}
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to grant permissions to role %q: %w", role.Name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	role.ID = domain.RoleID(model.ID)
	return nil
}

func (r *RoleRepository) GetByID(ctx context.Context, id domain.RoleID) (*domain.Role, error) {
	var model roleModel
	if err := r.db.WithContext(ctx).First(&model, uint64(id)).Error; err != nil {
		return nil, classify(err, "role %d", id)
	}
	return r.withPermissions(ctx, &model)
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	var model roleModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		return nil, classify(err, "role %q", name)
	}
	return r.withPermissions(ctx, &model)
}

func (r *RoleRepository) List(ctx context.Context) ([]*domain.Role, error) {
	var models []roleModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	roles := make([]*domain.Role, 0, len(models))
	for i := range models {
		role, err := r.withPermissions(ctx, &models[i])
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// Grant is idempotent.
func (r *RoleRepository) Grant(ctx context.Context, id domain.RoleID, code string) error {
	if err := r.exists(ctx, id); err != nil {
		return err
	}
	row := rolePermissionModel{RoleID: uint64(id), Code: code}
	err := r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		// deleted since the existence check
		return fmt.Errorf("role %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to grant %s to role %d: %w", code, id, err)
	}
	return nil
}

func (r *RoleRepository) Revoke(ctx context.Context, id domain.RoleID, code string) error {
	res := r.db.WithContext(ctx).
		Where("role_id = ? AND code = ?", uint64(id), code).
		Delete(&rolePermissionModel{})
	if res.Error != nil {
		return fmt.Errorf("failed to revoke %s from role %d: %w", code, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("permission %s on role %d: %w", code, id, domain.ErrNotFound)
	}
	return nil
}

func (r *RoleRepository) PermissionCodes(ctx context.Context, ids ...domain.RoleID) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}
	raw := make([]uint64, len(ids))
	for i, id := range ids {
		raw[i] = uint64(id)
	}
	var codes []string
	if err := r.db.WithContext(ctx).Model(&rolePermissionModel{}).
		Where("role_id IN ?", raw).
		Order("code").
		Distinct().
		Pluck("code", &codes).Error; err != nil {
		return nil, fmt.Errorf("failed to load permission codes: %w", err)
	}
	return codes, nil
}

// Delete counts holders first for a readable error. The RESTRICT foreign key
// on user_roles rejects a link that lands after the count.
func (r *RoleRepository) Delete(ctx context.Context, id domain.RoleID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var holders int64
		if err := tx.Model(&userRoleModel{}).Where("role_id = ?", uint64(id)).Count(&holders).Error; err != nil {
			return fmt.Errorf("failed to count holders of role %d: %w", id, err)
		}
		if holders > 0 {
			return fmt.Errorf("role %d is assigned to %d users: %w", id, holders, domain.ErrConflict)
		}
		if err := tx.Where("role_id = ?", uint64(id)).Delete(&rolePermissionModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete permissions of role %d: %w", id, err)
		}
		res := tx.Delete(&roleModel{}, uint64(id))
		if res.Error != nil {
			return classify(res.Error, "role %d", id)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("role %d: %w", id, domain.ErrNotFound)
		}
		return nil
	})
}

func (r *RoleRepository) exists(ctx context.Context, id domain.RoleID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&roleModel{}).Where("id = ?", uint64(id)).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up role %d: %w", id, err)
	}
	if count == 0 {
		return fmt.Errorf("role %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *RoleRepository) withPermissions(ctx context.Context, model *roleModel) (*domain.Role, error) {
	codes, err := r.PermissionCodes(ctx, domain.RoleID(model.ID))
	if err != nil {
		return nil, err
	}
	return &domain.Role{
		ID:          domain.RoleID(model.ID),
		Name:        model.Name,
		Description: model.Description,
		Permissions: codes,
	}, nil
}
