package todoist_test

import (
	"context"
	"testing"

	"github.com/Garee/todoist/pkg/todoist"
)

func addProject(t *testing.T, user *todoist.User, name string) *todoist.Project {
	t.Helper()
	project, err := user.AddProject(context.Background(), name, nil)
	if err != nil {
		t.Fatalf("failed to add project %s: %v", name, err)
	}
	return project
}

func TestAddTask(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()
	project := addProject(t, user, "Work")

	task, err := project.AddTask(ctx, "Write report", &todoist.TaskOptions{
		DateString: "today",
		Priority:   todoist.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID == 0 {
		t.Error("expected a server-assigned ID")
	}
	if task.Content != "Write report" {
		t.Errorf("unexpected content: %q", task.Content)
	}
	if task.ProjectID != project.ID {
		t.Errorf("task landed in project %d, want %d", task.ProjectID, project.ID)
	}
	if task.DateString != "today" || task.Priority != todoist.PriorityHigh {
		t.Errorf("options not applied: %+v", task)
	}

	tasks, err := project.GetTasks(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != task.ID {
		t.Errorf("expected the new task, got %v", tasks)
	}
}

func TestCompleteTask(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()
	project := addProject(t, user, "Work")

	task, err := project.AddTask(ctx, "Write report", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := task.Complete(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	uncompleted, err := project.GetUncompletedTasks(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(uncompleted) != 0 {
		t.Errorf("completed task still listed as open: %v", uncompleted)
	}
	completed, err := project.GetCompletedTasks(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != task.ID {
		t.Errorf("expected the completed task, got %v", completed)
	}

	if err := task.Uncomplete(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	uncompleted, err = project.GetUncompletedTasks(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(uncompleted) != 1 {
		t.Errorf("uncompleted task not listed as open: %v", uncompleted)
	}
}

func TestUpdateTask(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()
	project := addProject(t, user, "Work")

	task, err := project.AddTask(ctx, "Write report", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	patch := todoist.NewTaskPatch().Content("Write the report").Priority(todoist.PriorityVeryHigh)
	if err := task.Update(ctx, patch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Content != "Write the report" || task.Priority != todoist.PriorityVeryHigh {
		t.Errorf("patch not folded into local object: %+v", task)
	}

	tasks, err := project.GetTasks(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tasks[0].Content != "Write the report" {
		t.Errorf("update not persisted: %+v", tasks[0])
	}
}

func TestMoveTask(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()
	work := addProject(t, user, "Work")
	home := addProject(t, user, "Home")

	task, err := work.AddTask(ctx, "Buy milk", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := task.Move(ctx, home); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ProjectID != home.ID {
		t.Errorf("local project not updated: %+v", task)
	}

	workTasks, err := work.GetTasks(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(workTasks) != 0 {
		t.Errorf("task still in the old project: %v", workTasks)
	}
	homeTasks, err := home.GetTasks(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(homeTasks) != 1 || homeTasks[0].ID != task.ID {
		t.Errorf("task missing from the new project: %v", homeTasks)
	}
}

func TestDeleteTask(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()
	project := addProject(t, user, "Work")

	task, err := project.AddTask(ctx, "Write report", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := task.Delete(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tasks, err := project.GetTasks(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("deleted task still listed: %v", tasks)
	}
}

func TestTaskNotes(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()
	project := addProject(t, user, "Work")

	task, err := project.AddTask(ctx, "Write report", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := task.AddNote(ctx, "first draft done"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	notes, err := task.GetNotes(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 1 || notes[0].Content != "first draft done" {
		t.Fatalf("expected the task note, got %v", notes)
	}
	if notes[0].Task == nil || notes[0].Task.ID != task.ID {
		t.Error("note not linked to its task")
	}
}

func TestTaskReminders(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()
	project := addProject(t, user, "Work")

	task, err := project.AddTask(ctx, "Write report", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := task.AddDateReminder(ctx, "email", "2026-09-01T09:00"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := task.AddLocationReminder(ctx, "push", "Office", 55.8580, -4.2590, "on_enter", 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reminders, err := task.GetReminders(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reminders) != 2 {
		t.Fatalf("expected 2 reminders, got %v", reminders)
	}

	if err := user.ClearReminderLocations(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reminders, err = task.GetReminders(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reminders) != 1 || reminders[0].Type != "absolute" {
		t.Errorf("expected only the date reminder to survive, got %v", reminders)
	}

	if err := reminders[0].Delete(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reminders, err = task.GetReminders(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reminders) != 0 {
		t.Errorf("expected no reminders after delete, got %v", reminders)
	}
}

func TestQuickAddTask(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()

	task, err := user.QuickAddTask(ctx, "Buy milk today")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Content != "Buy milk today" {
		t.Errorf("unexpected content: %q", task.Content)
	}
	if task.ProjectID != user.InboxProject {
		t.Errorf("quick-added task should land in the inbox, got project %d", task.ProjectID)
	}
	if task.Project == nil {
		t.Fatal("quick-added task must be attached to a project")
	}
	if err := task.Complete(ctx); err != nil {
		t.Errorf("quick-added task should be operable: %v", err)
	}
}

func TestSearchTasks(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()
	project := addProject(t, user, "Work")

	today, err := project.AddTask(ctx, "due now", &todoist.TaskOptions{DateString: "today"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	done, err := project.AddTask(ctx, "already finished", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := done.Complete(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("Today", func(t *testing.T) {
		tasks, err := user.SearchTasks(ctx, todoist.QueryToday)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tasks) != 1 || tasks[0].ID != today.ID {
			t.Errorf("expected only the task due today, got %v", tasks)
		}
	})

	t.Run("ViewAll", func(t *testing.T) {
		tasks, err := user.SearchTasks(ctx, todoist.QueryAll)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tasks) != 2 {
			t.Errorf("viewall should include completed tasks, got %v", tasks)
		}
	})
}

func TestSearchTasksAcrossSessions(t *testing.T) {
	client := newSession(t)
	ctx := context.Background()

	first, err := client.Register(ctx, "Ann Example", "ann@example.com", "secret", "", "")
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	// A second session whose project cache predates the new project.
	second, err := client.Login(ctx, "ann@example.com", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	work, err := first.AddProject(ctx, "Work", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	task, err := work.AddTask(ctx, "stale cache", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tasks, err := second.SearchTasks(ctx, todoist.QueryAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var found *todoist.Task
	for _, got := range tasks {
		if got.ID == task.ID {
			found = got
		}
	}
	if found == nil {
		t.Fatalf("task missing from search results: %v", tasks)
	}
	if found.Project == nil || found.Project.ID != work.ID {
		t.Fatal("search result must be attached to its project")
	}
	if err := found.Complete(ctx); err != nil {
		t.Errorf("search result should be operable: %v", err)
	}
}

func TestUserTaskAggregates(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()
	work := addProject(t, user, "Work")
	home := addProject(t, user, "Home")

	if _, err := work.AddTask(ctx, "open one", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := home.AddTask(ctx, "open two", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	done, err := home.AddTask(ctx, "closed", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := done.Complete(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	open, err := user.GetUncompletedTasks(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(open) != 2 {
		t.Errorf("expected 2 open tasks, got %v", open)
	}
	completed, err := user.GetCompletedTasks(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != done.ID {
		t.Errorf("expected 1 completed task, got %v", completed)
	}
	all, err := user.GetTasks(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 tasks in total, got %v", all)
	}
}
