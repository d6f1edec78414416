package todoist

import (
	"context"
	"encoding/json"
)

// Label is a tag applicable to any number of tasks.
type Label struct {
	ID        int64                      `json:"id"`
	UID       int64                      `json:"uid"`
	Name      string                     `json:"name"`
	Color     int                        `json:"color"`
	ItemOrder int                        `json:"item_order"`
	IsDeleted int                        `json:"is_deleted"`
	Extra     map[string]json.RawMessage `json:"-"`

	Owner *User `json:"-"`
}

// LabelPatch stages changes to a label for Update. It also carries the
// optional attributes of User.AddLabel.
type LabelPatch struct {
	args map[string]any
}

func NewLabelPatch() *LabelPatch                { return &LabelPatch{args: map[string]any{}} }
func (p *LabelPatch) Name(v string) *LabelPatch { p.args["name"] = v; return p }
func (p *LabelPatch) Color(v int) *LabelPatch   { p.args["color"] = v; return p }

// Update pushes the staged changes to the service and, on success, folds
// them into the local object.
func (l *Label) Update(ctx context.Context, patch *LabelPatch) error {
	args := map[string]any{"id": l.ID}
	for k, v := range patch.args {
		args[k] = v
	}
	if err := l.Owner.perform(ctx, "label_update", args); err != nil {
		return err
	}
	for k, v := range patch.args {
		switch k {
		case "name":
			l.Name = v.(string)
		case "color":
			l.Color = v.(int)
		}
	}
	return nil
}

// Delete deletes the label.
func (l *Label) Delete(ctx context.Context) error {
	if err := l.Owner.perform(ctx, "label_delete", map[string]any{"id": l.ID}); err != nil {
		return err
	}
	l.IsDeleted = 1
	return nil
}
