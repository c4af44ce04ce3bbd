package service

import (
	"fmt"

	"incometracker/models"

	"gorm.io/gorm"
)

// IncomeService 收入记录存储（按用户隔离）
type IncomeService struct {
	db *gorm.DB
}

func NewIncomeService(db *gorm.DB) *IncomeService {
	return &IncomeService{db: db}
}

// GetIncomesByUserID 获取用户全部收入，日期倒序
func (s *IncomeService) GetIncomesByUserID(userID uint) ([]models.Income, error) {
	var list []models.Income
	if err := s.db.Where("user_id = ?", userID).
		Order("date DESC").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("query incomes of user %d: %w", userID, err)
	}
	return list, nil
}

// AddIncome 新增收入，成功后 in.ID 为数据库分配的主键
func (s *IncomeService) AddIncome(in *models.Income) error {
	if err := s.db.Create(in).Error; err != nil {
		return fmt.Errorf("create income: %w", err)
	}
	return nil
}

// UpdateIncome 整体覆盖收入的四个业务字段，不改变 ID 与所属用户
func (s *IncomeService) UpdateIncome(in *models.Income) error {
	res := s.db.Model(in).
		Select("source", "amount", "date", "payment_frequency").
		Updates(in)
	if res.Error != nil {
		return fmt.Errorf("update income %d: %w", in.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update income %d: %w", in.ID, gorm.ErrRecordNotFound)
	}
	return nil
}

// DeleteIncome 删除收入（软删除）
func (s *IncomeService) DeleteIncome(id uint) error {
	if err := s.db.Delete(&models.Income{}, id).Error; err != nil {
		return fmt.Errorf("delete income %d: %w", id, err)
	}
	return nil
}
