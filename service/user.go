package service

import (
	"errors"
	"fmt"

	"incometracker/models"

	"gorm.io/gorm"
)

// UserService 用户查询与创建
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) FindUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &user, nil
}

// FindByLogin 按用户名或邮箱查找
func (s *UserService) FindByLogin(login string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ? OR email = ?", login, login).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernameExists 用户名是否已被占用
func (s *UserService) UsernameExists(username string) (bool, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

func (s *UserService) CreateUser(user *models.User) error {
	if err := s.db.Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
