package projects

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Project statuses.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Project is a user-owned workspace grouping documents and chats.
type Project struct {
	ProjectID   string    `json:"projectId" bson:"project_id"`
	UserID      string    `json:"userId" bson:"user_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Status      string    `json:"status" bson:"status"` // active | archived
	Tags        []string  `json:"tags" bson:"tags"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}
