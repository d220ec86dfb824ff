package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Task_Mania/internal/model"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return translate("create user", r.DB.WithContext(ctx).Create(user).Error)
}

// FindByUsername accepts either a username or an email address.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("username = ? OR email = ?", username, username).First(&user).Error
	if err != nil {
		return nil, translate("find user", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate("find user", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	list := make([]model.User, 0, len(ids))
	if len(ids) == 0 {
		return list, nil
	}
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, translate("find users", err)
	}
	return list, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var usr model.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&usr).Error; err != nil {
		return nil, translate("find user", err)
	}
	return &usr, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, hash string) error {
	res := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("password", hash)
	if res.Error != nil {
		return translate("update password", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// UpsertOAuth creates the user on first external login and refreshes the
// profile fields the provider owns on later ones. Local credentials are kept.
func (r *UserRepository) UpsertOAuth(ctx context.Context, user *model.User) (*model.User, error) {
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "profile_image", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return nil, translate("upsert user", err)
	}
	// On conflict the generated id is not the stored one, so read back.
	return r.FindByEmail(ctx, user.Email)
}
