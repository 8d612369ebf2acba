package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck-api/internal/domain"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	t.Run("valid task", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask(1, "buy milk", "two liters")
		require.NoError(t, err)
		assert.Equal(t, int64(1), task.UserID)
		assert.Equal(t, "buy milk", task.Title)
		assert.Equal(t, "two liters", task.Description)
		assert.False(t, task.Completed)
	})

	t.Run("empty description is allowed", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask(1, "buy milk", "")
		require.NoError(t, err)
		assert.Empty(t, task.Description)
	})

	t.Run("empty title", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewTask(1, "", "")
		assert.ErrorIs(t, err, domain.ErrEmptyTaskTitle)
	})

	t.Run("title too long", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewTask(1, strings.Repeat("x", 101), "")
		assert.ErrorIs(t, err, domain.ErrTaskTitleTooLong)
	})

	t.Run("title at max length", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewTask(1, strings.Repeat("x", 100), "")
		assert.NoError(t, err)
	})

	t.Run("missing owner", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewTask(0, "buy milk", "")
		assert.ErrorIs(t, err, domain.ErrEmptyTaskUserID)
	})
}

func TestTaskIsOwnedBy(t *testing.T) {
	t.Parallel()

	task, err := domain.NewTask(7, "buy milk", "")
	require.NoError(t, err)

	assert.True(t, task.IsOwnedBy(7))
	assert.False(t, task.IsOwnedBy(8))
}

func TestTaskApply(t *testing.T) {
	t.Parallel()

	t.Run("applies only non-nil fields", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask(1, "buy milk", "two liters")
		require.NoError(t, err)

		title := "buy oat milk"
		require.NoError(t, task.Apply(domain.TaskPatch{Title: &title}))

		assert.Equal(t, "buy oat milk", task.Title)
		assert.Equal(t, "two liters", task.Description)
		assert.False(t, task.Completed)
	})

	t.Run("flips completed", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask(1, "buy milk", "")
		require.NoError(t, err)

		completed := true
		require.NoError(t, task.Apply(domain.TaskPatch{Completed: &completed}))
		assert.True(t, task.Completed)
	})

	t.Run("rejects patch that empties the title", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask(1, "buy milk", "")
		require.NoError(t, err)

		title := ""
		assert.ErrorIs(t, task.Apply(domain.TaskPatch{Title: &title}), domain.ErrEmptyTaskTitle)
	})

	t.Run("bumps UpdatedAt", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask(1, "buy milk", "")
		require.NoError(t, err)

		before := task.UpdatedAt
		description := "semi-skimmed"
		require.NoError(t, task.Apply(domain.TaskPatch{Description: &description}))
		assert.False(t, task.UpdatedAt.Before(before))
	})
}

func TestNewTaskStats(t *testing.T) {
	t.Parallel()

	t.Run("no tasks yields zero rate", func(t *testing.T) {
		t.Parallel()

		stats := domain.NewTaskStats(0, 0)
		assert.Equal(t, 0, stats.Total)
		assert.Equal(t, 0, stats.Completed)
		assert.Zero(t, stats.CompletionRate)
	})

	t.Run("half completed", func(t *testing.T) {
		t.Parallel()

		stats := domain.NewTaskStats(4, 2)
		assert.InDelta(t, 50.0, stats.CompletionRate, 0.001)
	})

	t.Run("all completed", func(t *testing.T) {
		t.Parallel()

		stats := domain.NewTaskStats(3, 3)
		assert.InDelta(t, 100.0, stats.CompletionRate, 0.001)
	})

	t.Run("one third", func(t *testing.T) {
		t.Parallel()

		stats := domain.NewTaskStats(3, 1)
		assert.InDelta(t, 33.333, stats.CompletionRate, 0.001)
	})
}
