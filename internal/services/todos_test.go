package services_test

import (
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rgcsekaraa/todorama/internal/models"
	"github.com/rgcsekaraa/todorama/internal/services"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One shared in-memory database per test, named after the test so
	// pooled connections see the same schema.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	require.NoError(t, db.AutoMigrate(&models.Todo{}))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestCreate(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService()

	todo, err := svc.Create(db, "user-1", "Buy milk")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, todo.ID)
	assert.Equal(t, "Buy milk", todo.Text)
	assert.False(t, todo.Completed)
	assert.Equal(t, "user-1", todo.OwnerID)
	assert.False(t, todo.CreatedAt.IsZero())
}

func TestCreate_TrimsText(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService()

	todo, err := svc.Create(db, "user-1", "  Buy milk  ")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", todo.Text)
}

func TestCreate_RejectsEmptyText(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService()

	_, err := svc.Create(db, "user-1", "   ")
	assert.Error(t, err)

	todos, err := svc.ListByOwner(db, "user-1")
	require.NoError(t, err)
	assert.Empty(t, todos, "no record should be persisted for empty text")
}

func TestListByOwner_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService()

	first, err := svc.Create(db, "user-1", "first")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := svc.Create(db, "user-1", "second")
	require.NoError(t, err)

	todos, err := svc.ListByOwner(db, "user-1")
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, second.ID, todos[0].ID)
	assert.Equal(t, first.ID, todos[1].ID)
}

func TestListByOwner_ScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService()

	_, err := svc.Create(db, "user-1", "mine")
	require.NoError(t, err)
	_, err = svc.Create(db, "user-2", "theirs")
	require.NoError(t, err)

	todos, err := svc.ListByOwner(db, "user-1")
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "mine", todos[0].Text)
}

func TestListByOwner_EmptyIsNotNil(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService()

	todos, err := svc.ListByOwner(db, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
}

func TestUpdateIfOwned_PartialUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService()

	todo, err := svc.Create(db, "user-1", "Buy milk")
	require.NoError(t, err)

	count, err := svc.UpdateIfOwned(db, todo.ID, "user-1", services.TodoPatch{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	updated, err := svc.GetByID(db, todo.ID)
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Buy milk", updated.Text, "text must survive a completed-only update")

	count, err = svc.UpdateIfOwned(db, todo.ID, "user-1", services.TodoPatch{Text: strPtr("Buy oat milk")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	updated, err = svc.GetByID(db, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", updated.Text)
	assert.True(t, updated.Completed, "completed must survive a text-only update")
}

func TestUpdateIfOwned_ForeignOwner(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService()

	todo, err := svc.Create(db, "user-1", "Buy milk")
	require.NoError(t, err)

	count, err := svc.UpdateIfOwned(db, todo.ID, "user-2", services.TodoPatch{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	unchanged, err := svc.GetByID(db, todo.ID)
	require.NoError(t, err)
	assert.False(t, unchanged.Completed, "foreign update must not touch the record")
}

func TestUpdateIfOwned_AbsentID(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService()

	count, err := svc.UpdateIfOwned(db, uuid.Must(uuid.NewV4()), "user-1", services.TodoPatch{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestUpdateIfOwned_EmptyPatch(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService()

	todo, err := svc.Create(db, "user-1", "Buy milk")
	require.NoError(t, err)

	_, err = svc.UpdateIfOwned(db, todo.ID, "user-1", services.TodoPatch{})
	assert.Error(t, err)
}

func TestDeleteIfOwned(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService()

	todo, err := svc.Create(db, "user-1", "Buy milk")
	require.NoError(t, err)

	count, err := svc.DeleteIfOwned(db, todo.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = svc.GetByID(db, todo.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "delete is physical, not soft")

	// Second delete of the same id is a clean zero, not an error.
	count, err = svc.DeleteIfOwned(db, todo.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestDeleteIfOwned_ForeignOwner(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewTodoService()

	todo, err := svc.Create(db, "user-1", "Buy milk")
	require.NoError(t, err)

	count, err := svc.DeleteIfOwned(db, todo.ID, "user-2")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = svc.GetByID(db, todo.ID)
	assert.NoError(t, err, "foreign delete must leave the record in place")
}
