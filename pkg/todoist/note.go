package todoist

import (
	"context"
	"encoding/json"
)

// Note is a comment attached to a task.
type Note struct {
	ID             int64                      `json:"id"`
	PostedUID      int64                      `json:"posted_uid"`
	ItemID         int64                      `json:"item_id"`
	ProjectID      int64                      `json:"project_id"`
	Content        string                     `json:"content"`
	FileAttachment json.RawMessage            `json:"file_attachment"`
	UIDsToNotify   []int64                    `json:"uids_to_notify"`
	IsDeleted      int                        `json:"is_deleted"`
	IsArchived     int                        `json:"is_archived"`
	Posted         string                     `json:"posted"`
	Extra          map[string]json.RawMessage `json:"-"`

	// Task is the task the note is attached to, nil for project-level
	// notes.
	Task  *Task `json:"-"`
	Owner *User `json:"-"`
}

// NotePatch stages changes to a note for Update.
type NotePatch struct {
	args map[string]any
}

func NewNotePatch() *NotePatch                   { return &NotePatch{args: map[string]any{}} }
func (p *NotePatch) Content(v string) *NotePatch { p.args["content"] = v; return p }

// Update pushes the staged changes to the service and, on success, folds
// them into the local object.
func (n *Note) Update(ctx context.Context, patch *NotePatch) error {
	args := map[string]any{"id": n.ID}
	for k, v := range patch.args {
		args[k] = v
	}
	if err := n.Owner.perform(ctx, "note_update", args); err != nil {
		return err
	}
	if v, ok := patch.args["content"]; ok {
		n.Content = v.(string)
	}
	return nil
}

// Delete deletes the note.
func (n *Note) Delete(ctx context.Context) error {
	if err := n.Owner.perform(ctx, "note_delete", map[string]any{"id": n.ID}); err != nil {
		return err
	}
	n.IsDeleted = 1
	return nil
}
