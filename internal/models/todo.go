package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Todo is a single task owned by exactly one user. OwnerID is the opaque
// subject identifier issued by the identity provider and never changes after
// creation.
type Todo struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Text      string    `json:"text" gorm:"not null"`
	Completed bool      `json:"completed" gorm:"not null;default:false"`
	OwnerID   string    `json:"ownerId" gorm:"column:owner_id;not null;index"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Todo) TableName() string {
	return "todos"
}
