package service

import (
	"fmt"

	"incometracker/models"

	"gorm.io/gorm"
)

// NoteService 收入备注存储
type NoteService struct {
	db *gorm.DB
}

func NewNoteService(db *gorm.DB) *NoteService {
	return &NoteService{db: db}
}

// GetNotesByUserID 按创建顺序返回用户的备注
func (s *NoteService) GetNotesByUserID(userID uint) ([]models.Note, error) {
	var notes []models.Note
	if err := s.db.Where("user_id = ?", userID).Order("id").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("query notes of user %d: %w", userID, err)
	}
	return notes, nil
}

// AddNote 新增备注，同步回填 n.ID
func (s *NoteService) AddNote(n *models.Note) error {
	if err := s.db.Create(n).Error; err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

func (s *NoteService) DeleteNoteByID(id uint) error {
	if err := s.db.Delete(&models.Note{}, id).Error; err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	return nil
}
