package services

import (
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/rgcsekaraa/todorama/internal/models"
)

// TodoPatch carries a partial update. Nil fields are left untouched.
type TodoPatch struct {
	Text      *string
	Completed *bool
}

func (p TodoPatch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil
}

// TodoService is the persistence boundary for todos. Every mutation is
// scoped to the owner inside a single conditional statement, so a todo owned
// by someone else can never be touched regardless of interleaving.
type TodoService interface {
	ListByOwner(db *gorm.DB, ownerID string) ([]models.Todo, error)
	Create(db *gorm.DB, ownerID, text string) (models.Todo, error)
	UpdateIfOwned(db *gorm.DB, id uuid.UUID, ownerID string, patch TodoPatch) (int64, error)
	DeleteIfOwned(db *gorm.DB, id uuid.UUID, ownerID string) (int64, error)
	GetByID(db *gorm.DB, id uuid.UUID) (models.Todo, error)
}

type TodoServiceImpl struct{}

func NewTodoService() *TodoServiceImpl {
	return &TodoServiceImpl{}
}

func (s *TodoServiceImpl) ListByOwner(db *gorm.DB, ownerID string) ([]models.Todo, error) {
	todos := []models.Todo{}
	result := db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&todos)
	return todos, result.Error
}

func (s *TodoServiceImpl) Create(db *gorm.DB, ownerID, text string) (models.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Todo{}, fmt.Errorf("todo text must not be empty")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return models.Todo{}, fmt.Errorf("failed to generate todo id: %w", err)
	}

	todo := models.Todo{
		ID:        id,
		Text:      text,
		Completed: false,
		OwnerID:   ownerID,
	}
	if err := db.Create(&todo).Error; err != nil {
		return models.Todo{}, err
	}
	return todo, nil
}

func (s *TodoServiceImpl) UpdateIfOwned(db *gorm.DB, id uuid.UUID, ownerID string, patch TodoPatch) (int64, error) {
	updates := map[string]interface{}{}
	if patch.Text != nil {
		updates["text"] = strings.TrimSpace(*patch.Text)
	}
	if patch.Completed != nil {
		updates["completed"] = *patch.Completed
	}
	if len(updates) == 0 {
		return 0, fmt.Errorf("no fields to update")
	}

	result := db.Model(&models.Todo{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (s *TodoServiceImpl) DeleteIfOwned(db *gorm.DB, id uuid.UUID, ownerID string) (int64, error) {
	result := db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Todo{})
	return result.RowsAffected, result.Error
}

func (s *TodoServiceImpl) GetByID(db *gorm.DB, id uuid.UUID) (models.Todo, error) {
	var todo models.Todo
	result := db.Where("id = ?", id).First(&todo)
	return todo, result.Error
}
