package todoist

import (
	"context"
	"encoding/json"
)

// Reminder notifies the task's owner before the task is due, either at a
// given time or at a given location.
type Reminder struct {
	ID           int64                      `json:"id"`
	NotifyUID    int64                      `json:"notify_uid"`
	ItemID       int64                      `json:"item_id"`
	Service      string                     `json:"service"`
	Type         string                     `json:"type"`
	DateString   string                     `json:"date_string"`
	DueDateUTC   string                     `json:"due_date_utc"`
	MinuteOffset int                        `json:"minute_offset"`
	Name         string                     `json:"name"`
	LocLat       string                     `json:"loc_lat"`
	LocLong      string                     `json:"loc_long"`
	LocTrigger   string                     `json:"loc_trigger"`
	Radius       int                        `json:"radius"`
	IsDeleted    int                        `json:"is_deleted"`
	Extra        map[string]json.RawMessage `json:"-"`

	Task *Task `json:"-"`
}

// Delete deletes the reminder.
func (r *Reminder) Delete(ctx context.Context) error {
	if err := r.Task.owner().perform(ctx, "reminder_delete", map[string]any{"id": r.ID}); err != nil {
		return err
	}
	r.IsDeleted = 1
	return nil
}
