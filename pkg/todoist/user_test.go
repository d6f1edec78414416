package todoist_test

import (
	"context"
	"strings"
	"testing"

	"github.com/Garee/todoist/pkg/todoist"
)

func TestUpdateUser(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()

	patch := todoist.NewUserPatch().FullName("Ann B. Example").StartDay(1)
	if err := user.Update(ctx, patch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.FullName != "Ann B. Example" || user.StartDay != 1 {
		t.Errorf("patch not folded into local object: %+v", user)
	}

	// The change survives a fresh sync.
	if err := user.Sync(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.FullName != "Ann B. Example" {
		t.Errorf("update not persisted: %q", user.FullName)
	}
}

func TestKarmaAndVacation(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()

	for name, op := range map[string]func(context.Context) error{
		"EnableKarma":     user.EnableKarma,
		"DisableKarma":    user.DisableKarma,
		"EnableVacation":  user.EnableVacation,
		"DisableVacation": user.DisableVacation,
	} {
		if err := op(ctx); err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
		}
	}
	if err := user.UpdateDailyKarmaGoal(ctx, 5); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := user.UpdateWeeklyKarmaGoal(ctx, 30); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNotificationSettings(t *testing.T) {
	user := newUser(t)
	ctx := context.Background()

	if err := user.EnableEmailNotifications(ctx, todoist.EventNoteAdded); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := user.DisableEmailNotifications(ctx, todoist.EventNoteAdded); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := user.EnablePushNotifications(ctx, todoist.EventItemCompleted); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := user.DisablePushNotifications(ctx, todoist.EventItemCompleted); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGetProductivityStats(t *testing.T) {
	user := newUser(t)
	stats, err := user.GetProductivityStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := stats["completed_count"]; !ok {
		t.Errorf("expected completed_count in stats, got %v", stats)
	}
}

func TestGetRedirectLink(t *testing.T) {
	user := newUser(t)
	link, err := user.GetRedirectLink(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(link, "https://") {
		t.Errorf("expected an absolute URL, got %q", link)
	}
}

func TestSyncKeepsUnknownFields(t *testing.T) {
	user := newUser(t)
	if err := user.Sync(context.Background(), "user", "projects"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	projects, err := user.GetProjects(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The inbox flag is a named field; anything else the service sends
	// must still be reachable through Extra.
	for _, p := range projects {
		for key := range p.Extra {
			if key == "" {
				t.Errorf("empty extra key on %+v", p)
			}
		}
	}
}
