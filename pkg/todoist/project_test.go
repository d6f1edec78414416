package todoist_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Garee/todoist/pkg/todoist"
)

func TestAddProject(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()

	before, err := user.GetProjects(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	project, err := user.AddProject(ctx, "Work", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if project.Name != "Work" {
		t.Errorf("expected name Work, got %q", project.Name)
	}
	if project.ID == 0 {
		t.Error("expected a server-assigned ID")
	}

	after, err := user.GetProjects(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(after) != len(before)+1 {
		t.Errorf("expected %d projects, got %d", len(before)+1, len(after))
	}
}

func TestGetProject(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()

	if _, err := user.AddProject(ctx, "Work", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	project, err := user.GetProject(ctx, "Work")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if project.Name != "Work" {
		t.Errorf("unexpected project: %+v", project)
	}

	if _, err := user.GetProject(ctx, "Nothing"); !errors.Is(err, todoist.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestUpdateProject(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()

	project, err := user.AddProject(ctx, "Work", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	patch := todoist.NewProjectPatch().Name("Homework").Color(todoist.ColorRed)
	if err := project.Update(ctx, patch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if project.Name != "Homework" || project.Color != todoist.ColorRed {
		t.Errorf("patch not folded into local object: %+v", project)
	}

	// Names are lookup keys: the old name no longer resolves, the new one
	// does.
	if _, err := user.GetProject(ctx, "Work"); !errors.Is(err, todoist.ErrProjectNotFound) {
		t.Errorf("stale name should miss, got %v", err)
	}
	renamed, err := user.GetProject(ctx, "Homework")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if renamed.ID != project.ID {
		t.Error("rename should not change project identity")
	}
}

func TestArchiveProject(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()

	project, err := user.AddProject(ctx, "Work", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := project.Archive(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	archived, err := user.GetArchivedProjects(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(archived) != 1 || archived[0].ID != project.ID {
		t.Errorf("expected the archived project, got %v", archived)
	}

	if err := project.Unarchive(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	archived, err = user.GetArchivedProjects(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(archived) != 0 {
		t.Errorf("expected no archived projects, got %v", archived)
	}
}

func TestUpdateProjectOrders(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()

	for _, name := range []string{"One", "Two", "Three"} {
		if _, err := user.AddProject(ctx, name, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	projects, err := user.GetProjects(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reversed := make([]*todoist.Project, len(projects))
	for i, p := range projects {
		reversed[len(projects)-1-i] = p
	}
	if err := user.UpdateProjectOrders(ctx, reversed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, err := user.GetProjects(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range after {
		if p.ID != reversed[i].ID {
			t.Fatalf("expected reversed order, got %v then %v", after[i].Name, reversed[i].Name)
		}
	}
}

func TestDeleteProject(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()

	project, err := user.AddProject(ctx, "Work", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := project.AddTask(ctx, "doomed", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := project.Delete(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := user.GetProject(ctx, "Work"); !errors.Is(err, todoist.ErrProjectNotFound) {
		t.Errorf("deleted project should be gone, got %v", err)
	}
	tasks, err := user.GetTasks(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("deleting a project should delete its tasks, got %v", tasks)
	}
}

func TestProjectNotes(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()

	project, err := user.AddProject(ctx, "Work", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := project.AddNote(ctx, "a project note"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	notes, err := project.GetNotes(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 1 || notes[0].Content != "a project note" {
		t.Fatalf("expected the project note, got %v", notes)
	}

	if err := notes[0].Update(ctx, todoist.NewNotePatch().Content("edited")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notes[0].Content != "edited" {
		t.Errorf("patch not folded into local object: %+v", notes[0])
	}

	if err := notes[0].Delete(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notes, err = project.GetNotes(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("expected no notes after delete, got %v", notes)
	}
}

func TestShareProject(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()

	project, err := user.AddProject(ctx, "Work", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := project.Share(ctx, "bob@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := project.DeleteCollaborator(ctx, "bob@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := project.TakeOwnership(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
