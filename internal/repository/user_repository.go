package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/dumpster-rentals/internal/model"
)

type UserRepository struct {
	*Table[model.User]
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{Table: NewTable[model.User](db, "username ASC")}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
