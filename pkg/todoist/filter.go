package todoist

import (
	"context"
	"encoding/json"
)

// Filter is a saved task query.
type Filter struct {
	ID        int64                      `json:"id"`
	Name      string                     `json:"name"`
	Query     string                     `json:"query"`
	Color     int                        `json:"color"`
	ItemOrder int                        `json:"item_order"`
	IsDeleted int                        `json:"is_deleted"`
	Extra     map[string]json.RawMessage `json:"-"`

	Owner *User `json:"-"`
}

// FilterPatch stages changes to a filter for Update. It also carries the
// optional attributes of User.AddFilter.
type FilterPatch struct {
	args map[string]any
}

func NewFilterPatch() *FilterPatch                  { return &FilterPatch{args: map[string]any{}} }
func (p *FilterPatch) Name(v string) *FilterPatch   { p.args["name"] = v; return p }
func (p *FilterPatch) Query(v string) *FilterPatch  { p.args["query"] = v; return p }
func (p *FilterPatch) Color(v int) *FilterPatch     { p.args["color"] = v; return p }
func (p *FilterPatch) ItemOrder(v int) *FilterPatch { p.args["item_order"] = v; return p }

// Update pushes the staged changes to the service and, on success, folds
// them into the local object.
func (f *Filter) Update(ctx context.Context, patch *FilterPatch) error {
	args := map[string]any{"id": f.ID}
	for k, v := range patch.args {
		args[k] = v
	}
	if err := f.Owner.perform(ctx, "filter_update", args); err != nil {
		return err
	}
	for k, v := range patch.args {
		switch k {
		case "name":
			f.Name = v.(string)
		case "query":
			f.Query = v.(string)
		case "color":
			f.Color = v.(int)
		case "item_order":
			f.ItemOrder = v.(int)
		}
	}
	return nil
}

// Delete deletes the filter.
func (f *Filter) Delete(ctx context.Context) error {
	if err := f.Owner.perform(ctx, "filter_delete", map[string]any{"id": f.ID}); err != nil {
		return err
	}
	f.IsDeleted = 1
	return nil
}
