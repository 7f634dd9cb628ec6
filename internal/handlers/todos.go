package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/rgcsekaraa/todorama/internal/middleware"
	"github.com/rgcsekaraa/todorama/internal/services"
)

type TodoHandler struct {
	db          *gorm.DB
	todoService services.TodoService
}

func NewTodoHandler(db *gorm.DB, todoService services.TodoService) *TodoHandler {
	return &TodoHandler{db: db, todoService: todoService}
}

// ListTodos returns every todo owned by the caller, newest first.
func (h *TodoHandler) ListTodos(c *gin.Context) {
	ownerID := middleware.CurrentUserID(c)

	todos, err := h.todoService.ListByOwner(h.db, ownerID)
	if err != nil {
		handleTodoError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *TodoHandler) CreateTodo(c *gin.Context) {
	ownerID := middleware.CurrentUserID(c)

	var input struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid todo text"})
		return
	}
	if strings.TrimSpace(input.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid todo text"})
		return
	}

	todo, err := h.todoService.Create(h.db, ownerID, input.Text)
	if err != nil {
		handleTodoError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// UpdateTodo applies a partial update. At least one of text/completed must be
// present. A todo that is absent or owned by someone else yields the same 404
// so existence never leaks across accounts.
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	ownerID := middleware.CurrentUserID(c)
	id := uuid.FromStringOrNil(c.Param("id"))

	var input struct {
		Text      *string `json:"text"`
		Completed *bool   `json:"completed"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	patch := services.TodoPatch{Text: input.Text, Completed: input.Completed}
	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid fields to update"})
		return
	}
	if patch.Text != nil && strings.TrimSpace(*patch.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid todo text"})
		return
	}

	count, err := h.todoService.UpdateIfOwned(h.db, id, ownerID, patch)
	if err != nil {
		handleTodoError(c, err)
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "todo not found"})
		return
	}

	updated, err := h.todoService.GetByID(h.db, id)
	if err != nil {
		handleTodoError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	ownerID := middleware.CurrentUserID(c)
	id := uuid.FromStringOrNil(c.Param("id"))

	count, err := h.todoService.DeleteIfOwned(h.db, id, ownerID)
	if err != nil {
		handleTodoError(c, err)
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "todo not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func handleTodoError(c *gin.Context, err error) {
	log.Printf("todo request failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process todo request"})
}
