// Package todoist exposes the Todoist API as Go objects: users, projects,
// tasks, notes, labels, filters and reminders. It sits on top of pkg/api and
// hides the endpoint plumbing so callers can interact with Todoist through
// method calls on domain objects. Every object is a projection of remote
// server state: local changes become visible to the service only when an
// explicit Update call pushes them.
package todoist

import (
	"context"
	"encoding/json"
	"errors"

	"golang.org/x/oauth2"

	"github.com/Garee/todoist/pkg/api"
	"github.com/Garee/todoist/pkg/log"
)

// Lookup failures for name-based getters.
var (
	ErrProjectNotFound = errors.New("todoist: project not found")
	ErrLabelNotFound   = errors.New("todoist: label not found")
	ErrFilterNotFound  = errors.New("todoist: filter not found")
)

// Client is the domain-layer session. It owns the transport client and the
// logger; the User objects it produces route their requests back through it.
// Domain objects are not safe for concurrent use.
type Client struct {
	api *api.Client
	l   log.Logger
}

// New creates a new Todoist session on top of an API client.
func New(apiClient *api.Client, l log.Logger) *Client {
	return &Client{api: apiClient, l: l}
}

// Login logs in with an email and password and returns the user.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	resp, err := c.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := classify(resp); err != nil {
		c.l.Errorf(ctx, "todoist: login failed for %s: %v", email, err)
		return nil, err
	}
	user, err := c.newUser(ctx, resp.Body)
	if err != nil {
		return nil, err
	}
	user.Password = password
	return user, nil
}

// LoginWithGoogle logs in using a Google oauth2 token. Obtaining a valid
// token is up to the caller.
func (c *Client) LoginWithGoogle(ctx context.Context, email string, token *oauth2.Token) (*User, error) {
	resp, err := c.api.LoginWithGoogle(ctx, email, token, nil)
	if err != nil {
		return nil, err
	}
	if err := classify(resp); err != nil {
		c.l.Errorf(ctx, "todoist: google login failed for %s: %v", email, err)
		return nil, err
	}
	return c.newUser(ctx, resp.Body)
}

// LoginWithAPIToken logs in using a user's API token. The sync endpoint does
// not echo the api_token field, so it is restored from the token field.
func (c *Client) LoginWithAPIToken(ctx context.Context, token string) (*User, error) {
	resp, err := c.api.Sync(ctx, token, initialSyncToken, `["user"]`, "", nil)
	if err != nil {
		return nil, err
	}
	if err := classify(resp); err != nil {
		c.l.Errorf(ctx, "todoist: token login failed: %v", err)
		return nil, err
	}
	var data syncData
	if err := resp.JSON(&data); err != nil {
		return nil, err
	}
	return c.newUser(ctx, data.User)
}

// Register registers a new user. lang and timezone may be empty to let the
// service choose.
func (c *Client) Register(ctx context.Context, fullName, email, password, lang, timezone string) (*User, error) {
	extra := api.Params{}
	if lang != "" {
		extra["lang"] = lang
	}
	if timezone != "" {
		extra["timezone"] = timezone
	}
	resp, err := c.api.Register(ctx, email, fullName, password, extra)
	if err != nil {
		return nil, err
	}
	if err := classify(resp); err != nil {
		c.l.Errorf(ctx, "todoist: registration failed for %s: %v", email, err)
		return nil, err
	}
	user, err := c.newUser(ctx, resp.Body)
	if err != nil {
		return nil, err
	}
	user.Password = password
	return user, nil
}

// RegisterWithGoogle registers a new account linked to a Google account.
func (c *Client) RegisterWithGoogle(ctx context.Context, fullName, email string, token *oauth2.Token, lang, timezone string) (*User, error) {
	extra := api.Params{"auto_signup": "1", "full_name": fullName}
	if lang != "" {
		extra["lang"] = lang
	}
	if timezone != "" {
		extra["timezone"] = timezone
	}
	resp, err := c.api.LoginWithGoogle(ctx, email, token, extra)
	if err != nil {
		return nil, err
	}
	if err := classify(resp); err != nil {
		c.l.Errorf(ctx, "todoist: google registration failed for %s: %v", email, err)
		return nil, err
	}
	return c.newUser(ctx, resp.Body)
}

// RegisterOutcome is the result of RegisterOrLogin. AlreadyRegistered
// reports that the email was taken and the user was logged in instead.
type RegisterOutcome struct {
	User              *User
	AlreadyRegistered bool
}

// RegisterOrLogin registers a new user, or logs in when the email is already
// registered. The conflict is an expected outcome, not an error, so it is
// reported in the returned outcome rather than raised.
func (c *Client) RegisterOrLogin(ctx context.Context, fullName, email, password string) (RegisterOutcome, error) {
	user, err := c.Register(ctx, fullName, email, password, "", "")
	if err == nil {
		return RegisterOutcome{User: user}, nil
	}
	if ErrKind(err) != KindRegistration {
		return RegisterOutcome{}, err
	}
	user, err = c.Login(ctx, email, password)
	if err != nil {
		return RegisterOutcome{}, err
	}
	return RegisterOutcome{User: user, AlreadyRegistered: true}, nil
}

// newUser hydrates a User from a JSON body and pulls its initial data.
func (c *Client) newUser(ctx context.Context, body json.RawMessage) (*User, error) {
	u := &User{
		c:         c,
		syncToken: initialSyncToken,
		projects:  map[int64]*Project{},
		tasks:     map[int64]*Task{},
		notes:     map[int64]*Note{},
		labels:    map[int64]*Label{},
		filters:   map[int64]*Filter{},
		reminders: map[int64]*Reminder{},
	}
	extra, err := hydrate(body, u)
	if err != nil {
		return nil, err
	}
	u.Extra = extra
	if u.APIToken == "" {
		u.APIToken = u.Token
	}
	if err := u.Sync(ctx); err != nil {
		return nil, err
	}
	return u, nil
}
