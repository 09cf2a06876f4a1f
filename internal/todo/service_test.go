package todo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowtrack/internal/db/dbtest"
	"flowtrack/internal/todo"
)

func newService(t *testing.T) *todo.Service {
	t.Helper()
	return &todo.Service{
		DB:  dbtest.Open(t),
		Now: func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) },
	}
}

func strp(s string) *string { return &s }

func titles(tasks []todo.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestCreateTaskExtractsTags(t *testing.T) {
	svc := newService(t)

	task, err := svc.CreateTask(context.Background(), todo.TaskInput{Title: "  call mom #Family #weekend "})
	require.NoError(t, err)
	assert.Equal(t, "call mom #Family #weekend", task.Title)
	assert.Equal(t, []string{"family", "weekend"}, []string(task.Tags))

	_, err = svc.CreateTask(context.Background(), todo.TaskInput{Title: " "})
	assert.ErrorIs(t, err, todo.ErrInvalidInput)

	_, err = svc.CreateTask(context.Background(), todo.TaskInput{Title: "x", DueDate: strp("next week")})
	assert.ErrorIs(t, err, todo.ErrInvalidInput)
}

func TestListTasksFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	work, err := svc.CreateCategory(ctx, "Work")
	require.NoError(t, err)

	mk := func(title string, cat *uint64, due *string) todo.Task {
		task, err := svc.CreateTask(ctx, todo.TaskInput{Title: title, CategoryID: cat, DueDate: due})
		require.NoError(t, err)
		return task
	}
	report := mk("quarterly report #work", &work.ID, strp("2024-03-15"))
	mk("standup notes #work", &work.ID, strp("2024-03-11"))
	mk("groceries #home", nil, strp("2024-03-12"))
	mk("fix_bike #home", nil, nil)

	done := true
	_, err = svc.UpdateTask(ctx, report.ID, todo.TaskPatch{Completed: &done})
	require.NoError(t, err)

	all, err := svc.ListTasks(ctx, todo.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.True(t, all[3].Completed, "completed tasks sort last")
	assert.Equal(t, "quarterly report #work", all[3].Title)

	byCat, err := svc.ListTasks(ctx, todo.TaskFilter{CategoryID: &work.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"standup notes #work", "quarterly report #work"}, titles(byCat))

	byTag, err := svc.ListTasks(ctx, todo.TaskFilter{Tag: "#HOME"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"groceries #home", "fix_bike #home"}, titles(byTag))

	byQuery, err := svc.ListTasks(ctx, todo.TaskFilter{Query: "REPORT"})
	require.NoError(t, err)
	assert.Equal(t, []string{"quarterly report #work"}, titles(byQuery))

	// underscore is literal, not a wildcard
	underscore, err := svc.ListTasks(ctx, todo.TaskFilter{Query: "x_b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"fix_bike #home"}, titles(underscore))

	window, err := svc.ListTasks(ctx, todo.TaskFilter{StartDue: "2024-03-11", EndDue: "2024-03-12"})
	require.NoError(t, err)
	assert.Equal(t, []string{"standup notes #work", "groceries #home"}, titles(window))

	_, err = svc.ListTasks(ctx, todo.TaskFilter{StartDue: "soon"})
	assert.ErrorIs(t, err, todo.ErrInvalidInput)
}

func TestUpdateTask(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	cat, err := svc.CreateCategory(ctx, "Home")
	require.NoError(t, err)
	task, err := svc.CreateTask(ctx, todo.TaskInput{Title: "paint", CategoryID: &cat.ID, DueDate: strp("2024-03-20")})
	require.NoError(t, err)

	updated, err := svc.UpdateTask(ctx, task.ID, todo.TaskPatch{
		Title:         strp("paint fence #diy"),
		ClearCategory: true,
		ClearDue:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "paint fence #diy", updated.Title)
	assert.Equal(t, []string{"diy"}, []string(updated.Tags))
	assert.Nil(t, updated.CategoryID)
	assert.Nil(t, updated.DueDate)

	_, err = svc.UpdateTask(ctx, task.ID, todo.TaskPatch{})
	assert.ErrorIs(t, err, todo.ErrInvalidInput)

	done := true
	_, err = svc.UpdateTask(ctx, 9999, todo.TaskPatch{Completed: &done})
	assert.ErrorIs(t, err, todo.ErrNotFound)
}

func TestDeleteCategoryDetachesTasks(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	cat, err := svc.CreateCategory(ctx, "Errands")
	require.NoError(t, err)
	task, err := svc.CreateTask(ctx, todo.TaskInput{Title: "post office", CategoryID: &cat.ID})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))
	assert.ErrorIs(t, svc.DeleteCategory(ctx, cat.ID), todo.ErrNotFound)

	tasks, err := svc.ListTasks(ctx, todo.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)
	assert.Nil(t, tasks[0].CategoryID)
}

func TestCompletedCount(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	a, err := svc.CreateTask(ctx, todo.TaskInput{Title: "a"})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, todo.TaskInput{Title: "b"})
	require.NoError(t, err)

	done := true
	_, err = svc.UpdateTask(ctx, a.ID, todo.TaskPatch{Completed: &done})
	require.NoError(t, err)

	n, err := svc.CompletedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, svc.DeleteTask(ctx, a.ID))
	assert.ErrorIs(t, svc.DeleteTask(ctx, a.ID), todo.ErrNotFound)
}
