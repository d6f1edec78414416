package todoist

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/Garee/todoist/pkg/api"
)

// User is a registered Todoist user. Its named fields mirror the service's
// user resource; unrecognized keys land in Extra. The caches behind the
// getters are repopulated by Sync.
type User struct {
	ID                int64                      `json:"id"`
	Email             string                     `json:"email"`
	FullName          string                     `json:"full_name"`
	Token             string                     `json:"token"`
	APIToken          string                     `json:"api_token"`
	JoinDate          string                     `json:"join_date"`
	IsPremium         bool                       `json:"is_premium"`
	PremiumUntil      string                     `json:"premium_until"`
	Timezone          string                     `json:"timezone"`
	TZOffset          json.RawMessage            `json:"tz_offset"`
	TimeFormat        int                        `json:"time_format"`
	DateFormat        int                        `json:"date_format"`
	StartPage         string                     `json:"start_page"`
	StartDay          int                        `json:"start_day"`
	NextWeek          int                        `json:"next_week"`
	SortOrder         int                        `json:"sort_order"`
	MobileNumber      string                     `json:"mobile_number"`
	MobileHost        string                     `json:"mobile_host"`
	BusinessAccountID int64                      `json:"business_account_id"`
	Karma             float64                    `json:"karma"`
	KarmaTrend        string                     `json:"karma_trend"`
	DefaultReminder   string                     `json:"default_reminder"`
	AutoReminder      int                        `json:"auto_reminder"`
	InboxProject      int64                      `json:"inbox_project"`
	TeamInbox         int64                      `json:"team_inbox"`
	ShardID           int64                      `json:"shard_id"`
	ImageID           string                     `json:"image_id"`
	IsBizAdmin        bool                       `json:"is_biz_admin"`
	LastUsedIP        string                     `json:"last_used_ip"`
	Extra             map[string]json.RawMessage `json:"-"`

	// Password is kept locally for calls that require it (account
	// deletion). It is never returned by the service.
	Password string `json:"-"`

	c         *Client
	syncToken string
	projects  map[int64]*Project
	tasks     map[int64]*Task
	notes     map[int64]*Note
	labels    map[int64]*Label
	filters   map[int64]*Filter
	reminders map[int64]*Reminder
}

// Sync pulls data from the service and replaces the user's local caches.
// It does not push local changes; use Update for that. With no arguments
// everything is synced, otherwise only the named resource types.
func (u *User) Sync(ctx context.Context, resourceTypes ...string) error {
	types := `["all"]`
	if len(resourceTypes) > 0 {
		encoded, err := json.Marshal(resourceTypes)
		if err != nil {
			return err
		}
		types = string(encoded)
	}
	resp, err := u.c.api.Sync(ctx, u.APIToken, initialSyncToken, types, "", nil)
	if err != nil {
		return err
	}
	if err := classify(resp); err != nil {
		u.c.l.Errorf(ctx, "todoist: sync failed: %v", err)
		return err
	}
	var data syncData
	if err := resp.JSON(&data); err != nil {
		return err
	}
	u.syncToken = data.SyncToken
	if data.Projects != nil {
		if err := u.syncProjects(data.Projects); err != nil {
			return err
		}
	}
	if data.Items != nil {
		if err := u.syncTasks(data.Items); err != nil {
			return err
		}
	}
	if data.Notes != nil {
		if err := u.syncNotes(data.Notes); err != nil {
			return err
		}
	}
	if data.Labels != nil {
		if err := u.syncLabels(data.Labels); err != nil {
			return err
		}
	}
	if data.Filters != nil {
		if err := u.syncFilters(data.Filters); err != nil {
			return err
		}
	}
	if data.Reminders != nil {
		if err := u.syncReminders(data.Reminders); err != nil {
			return err
		}
	}
	return nil
}

func (u *User) syncProjects(raws []json.RawMessage) error {
	u.projects = make(map[int64]*Project, len(raws))
	for _, raw := range raws {
		p := &Project{Owner: u}
		extra, err := hydrate(raw, p)
		if err != nil {
			return err
		}
		p.Extra = extra
		u.projects[p.ID] = p
	}
	return nil
}

func (u *User) syncTasks(raws []json.RawMessage) error {
	u.tasks = make(map[int64]*Task, len(raws))
	for _, raw := range raws {
		t := &Task{}
		extra, err := hydrate(raw, t)
		if err != nil {
			return err
		}
		project, ok := u.projects[t.ProjectID]
		if !ok {
			continue // task in a project we did not receive
		}
		t.Extra = extra
		t.Project = project
		u.tasks[t.ID] = t
	}
	return nil
}

func (u *User) syncNotes(raws []json.RawMessage) error {
	u.notes = make(map[int64]*Note, len(raws))
	for _, raw := range raws {
		n := &Note{Owner: u}
		extra, err := hydrate(raw, n)
		if err != nil {
			return err
		}
		n.Extra = extra
		n.Task = u.tasks[n.ItemID] // nil for project notes
		u.notes[n.ID] = n
	}
	return nil
}

func (u *User) syncLabels(raws []json.RawMessage) error {
	u.labels = make(map[int64]*Label, len(raws))
	for _, raw := range raws {
		l := &Label{Owner: u}
		extra, err := hydrate(raw, l)
		if err != nil {
			return err
		}
		l.Extra = extra
		u.labels[l.ID] = l
	}
	return nil
}

func (u *User) syncFilters(raws []json.RawMessage) error {
	u.filters = make(map[int64]*Filter, len(raws))
	for _, raw := range raws {
		f := &Filter{Owner: u}
		extra, err := hydrate(raw, f)
		if err != nil {
			return err
		}
		f.Extra = extra
		u.filters[f.ID] = f
	}
	return nil
}

func (u *User) syncReminders(raws []json.RawMessage) error {
	u.reminders = make(map[int64]*Reminder, len(raws))
	for _, raw := range raws {
		r := &Reminder{}
		extra, err := hydrate(raw, r)
		if err != nil {
			return err
		}
		task, ok := u.tasks[r.ItemID]
		if !ok {
			continue
		}
		r.Extra = extra
		r.Task = task
		u.reminders[r.ID] = r
	}
	return nil
}

// UserPatch stages changes to a user's details for Update.
type UserPatch struct {
	args map[string]any
}

func NewUserPatch() *UserPatch                    { return &UserPatch{args: map[string]any{}} }
func (p *UserPatch) Email(v string) *UserPatch    { p.args["email"] = v; return p }
func (p *UserPatch) FullName(v string) *UserPatch { p.args["full_name"] = v; return p }
func (p *UserPatch) Timezone(v string) *UserPatch { p.args["timezone"] = v; return p }
func (p *UserPatch) TimeFormat(v int) *UserPatch  { p.args["time_format"] = v; return p }
func (p *UserPatch) DateFormat(v int) *UserPatch  { p.args["date_format"] = v; return p }
func (p *UserPatch) StartPage(v string) *UserPatch {
	p.args["start_page"] = v
	return p
}
func (p *UserPatch) StartDay(v int) *UserPatch  { p.args["start_day"] = v; return p }
func (p *UserPatch) NextWeek(v int) *UserPatch  { p.args["next_week"] = v; return p }
func (p *UserPatch) SortOrder(v int) *UserPatch { p.args["sort_order"] = v; return p }
func (p *UserPatch) DefaultReminder(v string) *UserPatch {
	p.args["default_reminder"] = v
	return p
}
func (p *UserPatch) AutoReminder(v int) *UserPatch { p.args["auto_reminder"] = v; return p }

// Update pushes the staged changes to the service and, on success, folds
// them into the local object. Server-computed fields only appear after a
// fresh Sync.
func (u *User) Update(ctx context.Context, patch *UserPatch) error {
	if err := u.perform(ctx, "user_update", patch.args); err != nil {
		return err
	}
	for k, v := range patch.args {
		switch k {
		case "email":
			u.Email = v.(string)
		case "full_name":
			u.FullName = v.(string)
		case "timezone":
			u.Timezone = v.(string)
		case "time_format":
			u.TimeFormat = v.(int)
		case "date_format":
			u.DateFormat = v.(int)
		case "start_page":
			u.StartPage = v.(string)
		case "start_day":
			u.StartDay = v.(int)
		case "next_week":
			u.NextWeek = v.(int)
		case "sort_order":
			u.SortOrder = v.(int)
		case "default_reminder":
			u.DefaultReminder = v.(string)
		case "auto_reminder":
			u.AutoReminder = v.(int)
		}
	}
	return nil
}

// AddProject adds a project. opts may carry color, indent and order; nil
// means service defaults.
func (u *User) AddProject(ctx context.Context, name string, opts *ProjectPatch) (*Project, error) {
	args := map[string]any{"name": name}
	if opts != nil {
		for k, v := range opts.args {
			args[k] = v
		}
	}
	if err := u.perform(ctx, "project_add", args); err != nil {
		return nil, err
	}
	return u.GetProject(ctx, name)
}

// GetProject returns the project with the given name, or ErrProjectNotFound.
// Names are mutable and not unique: the first match wins, and a lookup by a
// stale name after a rename will miss or hit a different project.
func (u *User) GetProject(ctx context.Context, name string) (*Project, error) {
	projects, err := u.GetProjects(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, ErrProjectNotFound
}

// GetProjects syncs and returns the user's projects in display order.
func (u *User) GetProjects(ctx context.Context) ([]*Project, error) {
	if err := u.Sync(ctx); err != nil {
		return nil, err
	}
	projects := make([]*Project, 0, len(u.projects))
	for _, p := range u.projects {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].ItemOrder != projects[j].ItemOrder {
			return projects[i].ItemOrder < projects[j].ItemOrder
		}
		return projects[i].ID < projects[j].ID
	})
	return projects, nil
}

// GetArchivedProjects returns the user's archived projects.
func (u *User) GetArchivedProjects(ctx context.Context) ([]*Project, error) {
	projects, err := u.GetProjects(ctx)
	if err != nil {
		return nil, err
	}
	archived := make([]*Project, 0)
	for _, p := range projects {
		if p.IsArchived != 0 {
			archived = append(archived, p)
		}
	}
	return archived, nil
}

// UpdateProjectOrders persists the given project order. Submitting a
// reversed slice reverses the order returned by the next GetProjects.
func (u *User) UpdateProjectOrders(ctx context.Context, projects []*Project) error {
	mapping := make(map[string]int, len(projects))
	for i, p := range projects {
		mapping[strconv.FormatInt(p.ID, 10)] = i
	}
	return u.perform(ctx, "project_reorder", map[string]any{"id_order_mapping": mapping})
}

// GetTasks syncs and returns all of the user's tasks regardless of
// completion state.
func (u *User) GetTasks(ctx context.Context) ([]*Task, error) {
	if err := u.Sync(ctx); err != nil {
		return nil, err
	}
	tasks := make([]*Task, 0, len(u.tasks))
	for _, t := range u.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// GetUncompletedTasks returns the uncompleted tasks of every project,
// concatenated. If the service's per-project endpoints overlap, duplicates
// are passed through undeduplicated.
func (u *User) GetUncompletedTasks(ctx context.Context) ([]*Task, error) {
	projects, err := u.GetProjects(ctx)
	if err != nil {
		return nil, err
	}
	var tasks []*Task
	for _, p := range projects {
		uncompleted, err := p.GetUncompletedTasks(ctx)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, uncompleted...)
	}
	return tasks, nil
}

// GetCompletedTasks returns the completed tasks of every project,
// concatenated without deduplication.
func (u *User) GetCompletedTasks(ctx context.Context) ([]*Task, error) {
	projects, err := u.GetProjects(ctx)
	if err != nil {
		return nil, err
	}
	var tasks []*Task
	for _, p := range projects {
		completed, err := p.GetCompletedTasks(ctx)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, completed...)
	}
	return tasks, nil
}

// resolveProject returns the cached project with the given ID, refreshing
// the cache once if it is missing. Tasks handed to callers must always be
// attached to a project, or their operations have nowhere to route.
func (u *User) resolveProject(ctx context.Context, id int64) (*Project, error) {
	if p, ok := u.projects[id]; ok {
		return p, nil
	}
	if err := u.Sync(ctx, "projects"); err != nil {
		return nil, err
	}
	if p, ok := u.projects[id]; ok {
		return p, nil
	}
	return nil, ErrProjectNotFound
}

// QuickAddTask adds a task using the 'Quick Add Task' syntax, where a
// project name starts with '#', a label with '@' and an assignee with '+'.
func (u *User) QuickAddTask(ctx context.Context, text string) (*Task, error) {
	resp, err := u.c.api.QuickAdd(ctx, u.APIToken, text, nil)
	if err != nil {
		return nil, err
	}
	if err := classify(resp); err != nil {
		u.c.l.Errorf(ctx, "todoist: quick add failed: %v", err)
		return nil, err
	}
	t := &Task{}
	extra, err := hydrate(resp.Body, t)
	if err != nil {
		return nil, err
	}
	t.Extra = extra
	if t.Project, err = u.resolveProject(ctx, t.ProjectID); err != nil {
		return nil, err
	}
	return t, nil
}

// SearchTasks returns tasks matching at least one of the given queries. The
// Query constants cover the standard vocabulary.
func (u *User) SearchTasks(ctx context.Context, queries ...string) ([]*Task, error) {
	encoded, err := json.Marshal(queries)
	if err != nil {
		return nil, err
	}
	resp, err := u.c.api.Query(ctx, u.APIToken, string(encoded), nil)
	if err != nil {
		return nil, err
	}
	if err := classify(resp); err != nil {
		u.c.l.Errorf(ctx, "todoist: task search failed: %v", err)
		return nil, err
	}

	var results []struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := resp.JSON(&results); err != nil {
		return nil, err
	}

	var tasks []*Task
	for _, result := range results {
		if result.Data == nil {
			continue
		}
		var raws []json.RawMessage
		if result.Type == QueryAll {
			// The viewall result groups tasks per project.
			var groups []struct {
				Uncompleted []json.RawMessage `json:"uncompleted"`
				Completed   []json.RawMessage `json:"completed"`
			}
			if err := json.Unmarshal(result.Data, &groups); err != nil {
				return nil, err
			}
			for _, g := range groups {
				raws = append(raws, g.Uncompleted...)
				raws = append(raws, g.Completed...)
			}
		} else if err := json.Unmarshal(result.Data, &raws); err != nil {
			return nil, err
		}
		for _, raw := range raws {
			t := &Task{}
			extra, err := hydrate(raw, t)
			if err != nil {
				return nil, err
			}
			t.Extra = extra
			if t.Project, err = u.resolveProject(ctx, t.ProjectID); err != nil {
				return nil, err
			}
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// AddLabel creates a new label. opts may carry a color.
func (u *User) AddLabel(ctx context.Context, name string, opts *LabelPatch) (*Label, error) {
	args := map[string]any{"name": name}
	if opts != nil {
		for k, v := range opts.args {
			args[k] = v
		}
	}
	if err := u.perform(ctx, "label_register", args); err != nil {
		return nil, err
	}
	return u.GetLabel(ctx, name)
}

// GetLabel returns the label with the given name, or ErrLabelNotFound. The
// same stale-name caveat as GetProject applies.
func (u *User) GetLabel(ctx context.Context, name string) (*Label, error) {
	labels, err := u.GetLabels(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range labels {
		if l.Name == name {
			return l, nil
		}
	}
	return nil, ErrLabelNotFound
}

// GetLabels syncs and returns all of the user's labels.
func (u *User) GetLabels(ctx context.Context) ([]*Label, error) {
	if err := u.Sync(ctx); err != nil {
		return nil, err
	}
	labels := make([]*Label, 0, len(u.labels))
	for _, l := range u.labels {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].ID < labels[j].ID })
	return labels, nil
}

// GetNotes syncs and returns all of the user's notes.
func (u *User) GetNotes(ctx context.Context) ([]*Note, error) {
	if err := u.Sync(ctx); err != nil {
		return nil, err
	}
	notes := make([]*Note, 0, len(u.notes))
	for _, n := range u.notes {
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })
	return notes, nil
}

// AddFilter creates a new filter for a query. opts may carry color and
// order.
func (u *User) AddFilter(ctx context.Context, name, query string, opts *FilterPatch) (*Filter, error) {
	args := map[string]any{"name": name, "query": query}
	if opts != nil {
		for k, v := range opts.args {
			args[k] = v
		}
	}
	if err := u.perform(ctx, "filter_add", args); err != nil {
		return nil, err
	}
	return u.GetFilter(ctx, name)
}

// GetFilter returns the filter with the given name, or ErrFilterNotFound.
// The same stale-name caveat as GetProject applies.
func (u *User) GetFilter(ctx context.Context, name string) (*Filter, error) {
	filters, err := u.GetFilters(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range filters {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, ErrFilterNotFound
}

// GetFilters syncs and returns all of the user's filters.
func (u *User) GetFilters(ctx context.Context) ([]*Filter, error) {
	if err := u.Sync(ctx); err != nil {
		return nil, err
	}
	filters := make([]*Filter, 0, len(u.filters))
	for _, f := range u.filters {
		filters = append(filters, f)
	}
	sort.Slice(filters, func(i, j int) bool { return filters[i].ID < filters[j].ID })
	return filters, nil
}

// GetReminders syncs and returns all of the user's reminders.
func (u *User) GetReminders(ctx context.Context) ([]*Reminder, error) {
	if err := u.Sync(ctx); err != nil {
		return nil, err
	}
	reminders := make([]*Reminder, 0, len(u.reminders))
	for _, r := range u.reminders {
		reminders = append(reminders, r)
	}
	sort.Slice(reminders, func(i, j int) bool { return reminders[i].ID < reminders[j].ID })
	return reminders, nil
}

// ClearReminderLocations clears all reminder locations set for the user.
func (u *User) ClearReminderLocations(ctx context.Context) error {
	return u.perform(ctx, "clear_locations", map[string]any{})
}

// updateNotificationSettings flips one notification service for one event.
func (u *User) updateNotificationSettings(ctx context.Context, event, service string, dontNotify int) error {
	resp, err := u.c.api.UpdateNotificationSettings(ctx, u.APIToken, event, service, dontNotify)
	if err != nil {
		return err
	}
	if err := classify(resp); err != nil {
		u.c.l.Errorf(ctx, "todoist: notification settings update failed: %v", err)
		return err
	}
	return nil
}

// EnablePushNotifications enables push notifications for an event.
func (u *User) EnablePushNotifications(ctx context.Context, event string) error {
	return u.updateNotificationSettings(ctx, event, "push", 0)
}

// DisablePushNotifications disables push notifications for an event.
func (u *User) DisablePushNotifications(ctx context.Context, event string) error {
	return u.updateNotificationSettings(ctx, event, "push", 1)
}

// EnableEmailNotifications enables email notifications for an event.
func (u *User) EnableEmailNotifications(ctx context.Context, event string) error {
	return u.updateNotificationSettings(ctx, event, "email", 0)
}

// DisableEmailNotifications disables email notifications for an event.
func (u *User) DisableEmailNotifications(ctx context.Context, event string) error {
	return u.updateNotificationSettings(ctx, event, "email", 1)
}

// GetProductivityStats returns the user's productivity stats as a decoded
// JSON object.
func (u *User) GetProductivityStats(ctx context.Context) (map[string]any, error) {
	resp, err := u.c.api.GetProductivityStats(ctx, u.APIToken)
	if err != nil {
		return nil, err
	}
	if err := classify(resp); err != nil {
		u.c.l.Errorf(ctx, "todoist: productivity stats fetch failed: %v", err)
		return nil, err
	}
	var stats map[string]any
	if err := resp.JSON(&stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// EnableKarma enables karma for the user.
func (u *User) EnableKarma(ctx context.Context) error {
	return u.perform(ctx, "update_goals", map[string]any{"karma_disabled": 0})
}

// DisableKarma disables karma for the user.
func (u *User) DisableKarma(ctx context.Context) error {
	return u.perform(ctx, "update_goals", map[string]any{"karma_disabled": 1})
}

// EnableVacation enables vacation mode for the user.
func (u *User) EnableVacation(ctx context.Context) error {
	return u.perform(ctx, "update_goals", map[string]any{"vacation_mode": 1})
}

// DisableVacation disables vacation mode for the user.
func (u *User) DisableVacation(ctx context.Context) error {
	return u.perform(ctx, "update_goals", map[string]any{"vacation_mode": 0})
}

// UpdateDailyKarmaGoal sets the user's daily karma goal.
func (u *User) UpdateDailyKarmaGoal(ctx context.Context, goal int) error {
	return u.perform(ctx, "update_goals", map[string]any{"daily_goal": goal})
}

// UpdateWeeklyKarmaGoal sets the user's weekly karma goal.
func (u *User) UpdateWeeklyKarmaGoal(ctx context.Context, goal int) error {
	return u.perform(ctx, "update_goals", map[string]any{"weekly_goal": goal})
}

// GetRedirectLink returns an absolute URL that logs the user in on first
// use and then acts as a plain redirect.
func (u *User) GetRedirectLink(ctx context.Context) (string, error) {
	resp, err := u.c.api.GetRedirectLink(ctx, u.APIToken, nil)
	if err != nil {
		return "", err
	}
	if err := classify(resp); err != nil {
		u.c.l.Errorf(ctx, "todoist: redirect link fetch failed: %v", err)
		return "", err
	}
	var link struct {
		Link string `json:"link"`
	}
	if err := resp.JSON(&link); err != nil {
		return "", err
	}
	return link.Link, nil
}

// Delete deletes the user's account. The user cannot be recovered, the
// token becomes invalid, and this object is stale afterwards.
func (u *User) Delete(ctx context.Context, reason string) error {
	extra := api.Params{"in_background": "0"}
	if reason != "" {
		extra["reason_for_delete"] = reason
	}
	resp, err := u.c.api.DeleteUser(ctx, u.APIToken, u.Password, extra)
	if err != nil {
		return err
	}
	if err := classify(resp); err != nil {
		u.c.l.Errorf(ctx, "todoist: account deletion failed: %v", err)
		return err
	}
	return nil
}
