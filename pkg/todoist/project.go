package todoist

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/Garee/todoist/pkg/api"
)

// Project is a collection of tasks.
type Project struct {
	ID           int64                      `json:"id"`
	Name         string                     `json:"name"`
	Color        int                        `json:"color"`
	Indent       int                        `json:"indent"`
	ItemOrder    int                        `json:"item_order"`
	Collapsed    int                        `json:"collapsed"`
	IsArchived   int                        `json:"is_archived"`
	IsDeleted    int                        `json:"is_deleted"`
	InboxProject bool                       `json:"inbox_project"`
	Shared       bool                       `json:"shared"`
	Extra        map[string]json.RawMessage `json:"-"`

	Owner *User `json:"-"`
}

// ProjectPatch stages changes to a project for Update. It also carries the
// optional attributes of User.AddProject.
type ProjectPatch struct {
	args map[string]any
}

func NewProjectPatch() *ProjectPatch                  { return &ProjectPatch{args: map[string]any{}} }
func (p *ProjectPatch) Name(v string) *ProjectPatch   { p.args["name"] = v; return p }
func (p *ProjectPatch) Color(v int) *ProjectPatch     { p.args["color"] = v; return p }
func (p *ProjectPatch) Indent(v int) *ProjectPatch    { p.args["indent"] = v; return p }
func (p *ProjectPatch) ItemOrder(v int) *ProjectPatch { p.args["item_order"] = v; return p }
func (p *ProjectPatch) Collapsed(v int) *ProjectPatch { p.args["collapsed"] = v; return p }

// Update pushes the staged changes to the service and, on success, folds
// them into the local object.
func (p *Project) Update(ctx context.Context, patch *ProjectPatch) error {
	args := map[string]any{"id": p.ID}
	for k, v := range patch.args {
		args[k] = v
	}
	if err := p.Owner.perform(ctx, "project_update", args); err != nil {
		return err
	}
	for k, v := range patch.args {
		switch k {
		case "name":
			p.Name = v.(string)
		case "color":
			p.Color = v.(int)
		case "indent":
			p.Indent = v.(int)
		case "item_order":
			p.ItemOrder = v.(int)
		case "collapsed":
			p.Collapsed = v.(int)
		}
	}
	return nil
}

// Archive archives the project.
func (p *Project) Archive(ctx context.Context) error {
	if err := p.Owner.perform(ctx, "project_archive", map[string]any{"id": p.ID}); err != nil {
		return err
	}
	p.IsArchived = 1
	return nil
}

// Unarchive unarchives the project.
func (p *Project) Unarchive(ctx context.Context) error {
	if err := p.Owner.perform(ctx, "project_unarchive", map[string]any{"id": p.ID}); err != nil {
		return err
	}
	p.IsArchived = 0
	return nil
}

// Collapse collapses the project in the overview listing.
func (p *Project) Collapse(ctx context.Context) error {
	return p.Update(ctx, NewProjectPatch().Collapsed(1))
}

// AddTask adds a task to the project. opts may carry a due date and
// priority.
func (p *Project) AddTask(ctx context.Context, content string, opts *TaskOptions) (*Task, error) {
	extra := taskOptionParams(opts)
	extra["project_id"] = strconv.FormatInt(p.ID, 10)
	resp, err := p.Owner.c.api.AddItem(ctx, p.Owner.APIToken, content, extra)
	if err != nil {
		return nil, err
	}
	if err := classify(resp); err != nil {
		p.Owner.c.l.Errorf(ctx, "todoist: task add failed: %v", err)
		return nil, err
	}
	t := &Task{}
	extraFields, err := hydrate(resp.Body, t)
	if err != nil {
		return nil, err
	}
	t.Extra = extraFields
	t.Project = p
	return t, nil
}

// GetTasks syncs and returns the project's tasks.
func (p *Project) GetTasks(ctx context.Context) ([]*Task, error) {
	if err := p.Owner.Sync(ctx); err != nil {
		return nil, err
	}
	tasks := make([]*Task, 0)
	for _, t := range p.Owner.tasks {
		if t.ProjectID == p.ID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// GetUncompletedTasks returns the project's uncompleted tasks.
func (p *Project) GetUncompletedTasks(ctx context.Context) ([]*Task, error) {
	tasks, err := p.GetTasks(ctx)
	if err != nil {
		return nil, err
	}
	uncompleted := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Checked == 0 {
			uncompleted = append(uncompleted, t)
		}
	}
	return uncompleted, nil
}

// GetCompletedTasks returns the project's completed tasks, paging through
// the completed-items archive.
func (p *Project) GetCompletedTasks(ctx context.Context) ([]*Task, error) {
	if err := p.Owner.Sync(ctx); err != nil {
		return nil, err
	}
	const pageSize = 50
	var tasks []*Task
	for offset := 0; ; offset += pageSize {
		resp, err := p.Owner.c.api.GetAllCompletedTasks(ctx, p.Owner.APIToken, api.Params{
			"project_id": strconv.FormatInt(p.ID, 10),
			"limit":      strconv.Itoa(pageSize),
			"offset":     strconv.Itoa(offset),
		})
		if err != nil {
			return nil, err
		}
		if err := classify(resp); err != nil {
			p.Owner.c.l.Errorf(ctx, "todoist: completed tasks fetch failed: %v", err)
			return nil, err
		}
		var page struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := resp.JSON(&page); err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			t := &Task{}
			extra, err := hydrate(raw, t)
			if err != nil {
				return nil, err
			}
			t.Extra = extra
			t.Project = p
			tasks = append(tasks, t)
		}
		if len(page.Items) < pageSize {
			return tasks, nil
		}
	}
}

// AddNote attaches a note to the project.
func (p *Project) AddNote(ctx context.Context, content string) error {
	return p.Owner.perform(ctx, "note_add", map[string]any{
		"project_id": p.ID,
		"content":    content,
	})
}

// GetNotes syncs and returns the notes attached to the project itself and
// to its tasks.
func (p *Project) GetNotes(ctx context.Context) ([]*Note, error) {
	notes, err := p.Owner.GetNotes(ctx)
	if err != nil {
		return nil, err
	}
	projectNotes := make([]*Note, 0)
	for _, n := range notes {
		if n.ProjectID == p.ID || (n.Task != nil && n.Task.ProjectID == p.ID) {
			projectNotes = append(projectNotes, n)
		}
	}
	return projectNotes, nil
}

// Share shares the project with another user.
func (p *Project) Share(ctx context.Context, email string) error {
	return p.Owner.perform(ctx, "share_project", map[string]any{
		"project_id": p.ID,
		"email":      email,
	})
}

// DeleteCollaborator removes a collaborator from the project.
func (p *Project) DeleteCollaborator(ctx context.Context, email string) error {
	return p.Owner.perform(ctx, "delete_collaborator", map[string]any{
		"project_id": p.ID,
		"email":      email,
	})
}

// TakeOwnership takes ownership of the shared project.
func (p *Project) TakeOwnership(ctx context.Context) error {
	return p.Owner.perform(ctx, "take_ownership", map[string]any{"project_id": p.ID})
}

// Delete deletes the project and everything in it.
func (p *Project) Delete(ctx context.Context) error {
	if err := p.Owner.perform(ctx, "project_delete", map[string]any{"ids": []int64{p.ID}}); err != nil {
		return err
	}
	p.IsDeleted = 1
	return nil
}
