package todoist

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/Garee/todoist/pkg/api"
)

// Task is a single to-do item.
type Task struct {
	ID             int64                      `json:"id"`
	UserID         int64                      `json:"user_id"`
	ProjectID      int64                      `json:"project_id"`
	Content        string                     `json:"content"`
	DateString     string                     `json:"date_string"`
	DueDateUTC     string                     `json:"due_date_utc"`
	Priority       int                        `json:"priority"`
	Indent         int                        `json:"indent"`
	ItemOrder      int                        `json:"item_order"`
	DayOrder       int                        `json:"day_order"`
	Checked        int                        `json:"checked"`
	InHistory      int                        `json:"in_history"`
	IsDeleted      int                        `json:"is_deleted"`
	IsArchived     int                        `json:"is_archived"`
	Collapsed      int                        `json:"collapsed"`
	Labels         []int64                    `json:"labels"`
	AssignedByUID  int64                      `json:"assigned_by_uid"`
	ResponsibleUID int64                      `json:"responsible_uid"`
	DateAdded      string                     `json:"date_added"`
	Extra          map[string]json.RawMessage `json:"-"`

	Project *Project `json:"-"`
}

// TaskOptions carries the optional attributes accepted when adding a task.
type TaskOptions struct {
	DateString string
	Priority   int
}

func taskOptionParams(opts *TaskOptions) api.Params {
	extra := api.Params{}
	if opts == nil {
		return extra
	}
	if opts.DateString != "" {
		extra["date_string"] = opts.DateString
	}
	if opts.Priority != 0 {
		extra["priority"] = strconv.Itoa(opts.Priority)
	}
	return extra
}

// TaskPatch stages changes to a task for Update.
type TaskPatch struct {
	args map[string]any
}

func NewTaskPatch() *TaskPatch                      { return &TaskPatch{args: map[string]any{}} }
func (p *TaskPatch) Content(v string) *TaskPatch    { p.args["content"] = v; return p }
func (p *TaskPatch) DateString(v string) *TaskPatch { p.args["date_string"] = v; return p }
func (p *TaskPatch) Priority(v int) *TaskPatch      { p.args["priority"] = v; return p }
func (p *TaskPatch) Indent(v int) *TaskPatch        { p.args["indent"] = v; return p }
func (p *TaskPatch) ItemOrder(v int) *TaskPatch     { p.args["item_order"] = v; return p }
func (p *TaskPatch) DayOrder(v int) *TaskPatch      { p.args["day_order"] = v; return p }
func (p *TaskPatch) Collapsed(v int) *TaskPatch     { p.args["collapsed"] = v; return p }
func (p *TaskPatch) Labels(v []int64) *TaskPatch    { p.args["labels"] = v; return p }

// Update pushes the staged changes to the service and, on success, folds
// them into the local object.
func (t *Task) Update(ctx context.Context, patch *TaskPatch) error {
	args := map[string]any{"id": t.ID}
	for k, v := range patch.args {
		args[k] = v
	}
	if err := t.owner().perform(ctx, "item_update", args); err != nil {
		return err
	}
	for k, v := range patch.args {
		switch k {
		case "content":
			t.Content = v.(string)
		case "date_string":
			t.DateString = v.(string)
		case "priority":
			t.Priority = v.(int)
		case "indent":
			t.Indent = v.(int)
		case "item_order":
			t.ItemOrder = v.(int)
		case "day_order":
			t.DayOrder = v.(int)
		case "collapsed":
			t.Collapsed = v.(int)
		case "labels":
			t.Labels = v.([]int64)
		}
	}
	return nil
}

func (t *Task) owner() *User { return t.Project.Owner }

// Complete marks the task complete.
func (t *Task) Complete(ctx context.Context) error {
	err := t.owner().perform(ctx, "item_complete", map[string]any{
		"project_id": t.ProjectID,
		"ids":        []int64{t.ID},
	})
	if err != nil {
		return err
	}
	t.Checked = 1
	return nil
}

// Uncomplete marks the task uncomplete.
func (t *Task) Uncomplete(ctx context.Context) error {
	err := t.owner().perform(ctx, "item_uncomplete", map[string]any{
		"project_id": t.ProjectID,
		"ids":        []int64{t.ID},
	})
	if err != nil {
		return err
	}
	t.Checked = 0
	return nil
}

// Move moves the task into another project.
func (t *Task) Move(ctx context.Context, project *Project) error {
	err := t.owner().perform(ctx, "item_move", map[string]any{
		"project_items": map[string][]int64{
			strconv.FormatInt(t.ProjectID, 10): {t.ID},
		},
		"to_project": project.ID,
	})
	if err != nil {
		return err
	}
	t.ProjectID = project.ID
	t.Project = project
	return nil
}

// AddNote attaches a note to the task.
func (t *Task) AddNote(ctx context.Context, content string) error {
	return t.owner().perform(ctx, "note_add", map[string]any{
		"item_id": t.ID,
		"content": content,
	})
}

// GetNotes syncs and returns the notes attached to the task.
func (t *Task) GetNotes(ctx context.Context) ([]*Note, error) {
	notes, err := t.owner().GetNotes(ctx)
	if err != nil {
		return nil, err
	}
	taskNotes := make([]*Note, 0)
	for _, n := range notes {
		if n.ItemID == t.ID {
			taskNotes = append(taskNotes, n)
		}
	}
	return taskNotes, nil
}

// AddDateReminder adds a reminder that fires at a given date. service is
// one of "email", "mobile" or "push"; dueDate is the full date in the
// service's UTC format.
func (t *Task) AddDateReminder(ctx context.Context, service, dueDate string) error {
	return t.owner().perform(ctx, "reminder_add", map[string]any{
		"item_id":      t.ID,
		"service":      service,
		"type":         "absolute",
		"due_date_utc": dueDate,
	})
}

// AddLocationReminder adds a reminder that fires at a given location.
// triggerType is "on_enter" or "on_leave".
func (t *Task) AddLocationReminder(ctx context.Context, service, name string, lat, long float64, triggerType string, radius int) error {
	return t.owner().perform(ctx, "reminder_add", map[string]any{
		"item_id":     t.ID,
		"service":     service,
		"type":        "location",
		"name":        name,
		"loc_lat":     strconv.FormatFloat(lat, 'f', -1, 64),
		"loc_long":    strconv.FormatFloat(long, 'f', -1, 64),
		"loc_trigger": triggerType,
		"radius":      radius,
	})
}

// GetReminders syncs and returns the reminders attached to the task.
func (t *Task) GetReminders(ctx context.Context) ([]*Reminder, error) {
	reminders, err := t.owner().GetReminders(ctx)
	if err != nil {
		return nil, err
	}
	taskReminders := make([]*Reminder, 0)
	for _, r := range reminders {
		if r.ItemID == t.ID {
			taskReminders = append(taskReminders, r)
		}
	}
	return taskReminders, nil
}

// Delete deletes the task.
func (t *Task) Delete(ctx context.Context) error {
	if err := t.owner().perform(ctx, "item_delete", map[string]any{"ids": []int64{t.ID}}); err != nil {
		return err
	}
	t.IsDeleted = 1
	return nil
}
