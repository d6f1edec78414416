package todoist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/Garee/todoist/pkg/api"
)

// initialSyncToken requests a full sync from the service.
const initialSyncToken = "*"

// command is one typed operation in a sync batch. The UUID makes the command
// idempotent on the server; the temp ID names resources the command creates
// before the server assigns a real ID.
type command struct {
	Type   string         `json:"type"`
	Args   map[string]any `json:"args"`
	UUID   string         `json:"uuid"`
	TempID string         `json:"temp_id"`
}

// syncData is the decoded body of a sync response: updated resource
// snapshots, the new cursor, and the per-command status map.
type syncData struct {
	SyncToken     string                     `json:"sync_token"`
	FullSync      bool                       `json:"full_sync"`
	User          json.RawMessage            `json:"user"`
	Projects      []json.RawMessage          `json:"projects"`
	Items         []json.RawMessage          `json:"items"`
	Notes         []json.RawMessage          `json:"notes"`
	Labels        []json.RawMessage          `json:"labels"`
	Filters       []json.RawMessage          `json:"filters"`
	Reminders     []json.RawMessage          `json:"reminders"`
	SyncStatus    map[string]json.RawMessage `json:"sync_status"`
	TempIDMapping map[string]int64           `json:"temp_id_mapping"`
}

// perform sends a single command through the sync endpoint and advances the
// user's cursor. The first failing step aborts the operation.
func (u *User) perform(ctx context.Context, cmdType string, args map[string]any) error {
	cmd := command{
		Type:   cmdType,
		Args:   args,
		UUID:   uuid.NewString(),
		TempID: uuid.NewString(),
	}
	payload, err := json.Marshal([]command{cmd})
	if err != nil {
		return fmt.Errorf("todoist: failed to encode %s command: %w", cmdType, err)
	}

	u.c.l.Debugf(ctx, "todoist: dispatching %s command %s", cmdType, cmd.UUID)
	resp, err := u.c.api.Sync(ctx, u.APIToken, u.syncToken, "", string(payload), nil)
	if err != nil {
		return err
	}
	if err := classify(resp); err != nil {
		u.c.l.Errorf(ctx, "todoist: %s command failed: %v", cmdType, err)
		return err
	}

	var data syncData
	if err := resp.JSON(&data); err != nil {
		return err
	}
	if err := commandError(resp, &data, cmd.UUID); err != nil {
		u.c.l.Errorf(ctx, "todoist: %s command rejected: %v", cmdType, err)
		return err
	}
	if data.SyncToken != "" {
		u.syncToken = data.SyncToken
	}
	return nil
}

// commandError checks the sync_status entry for a command UUID. The service
// answers "ok" for success and an object with an error key otherwise.
func commandError(resp *api.Response, data *syncData, id string) error {
	raw, ok := data.SyncStatus[id]
	if !ok {
		return nil
	}
	var status string
	if err := json.Unmarshal(raw, &status); err == nil && status == "ok" {
		return nil
	}
	var failure struct {
		Error    string `json:"error"`
		ErrorTag string `json:"error_tag"`
	}
	kind := KindGeneric
	if err := json.Unmarshal(raw, &failure); err == nil {
		if k, ok := tagKinds[failure.ErrorTag]; ok {
			kind = k
		} else if k, ok := sentinelKinds[failure.Error]; ok {
			kind = k
		}
	}
	return &RequestError{Kind: kind, Response: resp}
}
