package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the production endpoint of the Todoist API.
const DefaultBaseURL = "https://api.todoist.com/API/v8/"

// Params holds request parameters. Optional params are additive: they never
// override a required one in valid usage.
type Params map[string]string

// Client is the HTTP wrapper for the Todoist API. It knows the base URL and,
// for each remote operation, the endpoint name and required parameters. It
// returns raw responses unmodified; classification belongs to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Todoist API client against the given base URL.
// Pass api.DefaultBaseURL for the production service.
func NewClient(baseURL string) *Client {
	return NewClientWithHTTPClient(baseURL, &http.Client{})
}

// NewClientWithHTTPClient creates a client using the supplied http.Client,
// which carries whatever timeout or transport the caller configured.
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// BaseURL returns the base URL this client issues requests against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login logs in to Todoist with an email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*Response, error) {
	params := Params{"email": email, "password": password}
	return c.get(ctx, "login", params, nil)
}

// LoginWithGoogle logs in to Todoist using a Google oauth2 token. If the
// optional params carry auto_signup=1 an account is registered on the fly,
// which mutates state and therefore goes out as a POST.
func (c *Client) LoginWithGoogle(ctx context.Context, email string, token *oauth2.Token, extra Params) (*Response, error) {
	params := Params{"email": email, "oauth2_token": token.AccessToken}
	if extra["auto_signup"] == "1" {
		return c.post(ctx, "login_with_google", params, extra)
	}
	return c.get(ctx, "login_with_google", params, extra)
}

// Register registers a new Todoist user. Optional params: lang, timezone.
func (c *Client) Register(ctx context.Context, email, fullName, password string, extra Params) (*Response, error) {
	params := Params{"email": email, "full_name": fullName, "password": password}
	return c.post(ctx, "register", params, extra)
}

// DeleteUser deletes a registered user's account. Optional params:
// reason_for_delete, in_background.
func (c *Client) DeleteUser(ctx context.Context, token, password string, extra Params) (*Response, error) {
	params := Params{"token": token, "current_password": password}
	return c.post(ctx, "delete_user", params, extra)
}

// Sync reads and writes Todoist data through the consolidated sync endpoint.
// syncToken is the cursor from the previous call, or "*" for a full sync.
// commands is a JSON-encoded list of typed commands; when it is empty the
// call is a pure read and resourceTypes selects the data to return.
func (c *Client) Sync(ctx context.Context, token, syncToken, resourceTypes, commands string, extra Params) (*Response, error) {
	params := Params{"token": token, "sync_token": syncToken}
	if commands == "" {
		params["resource_types"] = resourceTypes
		return c.get(ctx, "sync", params, extra)
	}
	params["commands"] = commands
	return c.post(ctx, "sync", params, extra)
}

// Query searches all of a user's tasks using date, priority and label
// queries. queries is a JSON-encoded list of query strings.
func (c *Client) Query(ctx context.Context, token, queries string, extra Params) (*Response, error) {
	params := Params{"token": token, "queries": queries}
	return c.get(ctx, "query", params, extra)
}

// AddItem adds a task. Optional params: project_id, date_string, priority,
// indent, item_order, labels, assigned_by_uid, responsible_uid, note.
func (c *Client) AddItem(ctx context.Context, token, content string, extra Params) (*Response, error) {
	params := Params{"token": token, "content": content}
	return c.post(ctx, "add_item", params, extra)
}

// QuickAdd adds a task using the 'Quick Add Task' syntax, where a project
// name starts with '#', a label with '@' and an assignee with '+'.
func (c *Client) QuickAdd(ctx context.Context, token, text string, extra Params) (*Response, error) {
	params := Params{"token": token, "text": text}
	return c.post(ctx, "quick/add", params, extra)
}

// GetAllCompletedTasks returns a user's completed tasks. Optional params:
// project_id, limit, offset, from_date, to.
func (c *Client) GetAllCompletedTasks(ctx context.Context, token string, extra Params) (*Response, error) {
	params := Params{"token": token}
	return c.get(ctx, "get_all_completed_items", params, extra)
}

// GetProductivityStats returns a user's productivity stats.
func (c *Client) GetProductivityStats(ctx context.Context, token string) (*Response, error) {
	params := Params{"token": token}
	return c.get(ctx, "get_productivity_stats", params, nil)
}

// UpdateNotificationSettings updates how a user is notified about an event.
// service is "email" or "push"; dontNotify disables the notification when 1.
func (c *Client) UpdateNotificationSettings(ctx context.Context, token, event, service string, dontNotify int) (*Response, error) {
	params := Params{
		"token":             token,
		"notification_type": event,
		"service":           service,
		"dont_notify":       strconv.Itoa(dontNotify),
	}
	return c.post(ctx, "update_notification_setting", params, nil)
}

// GetRedirectLink returns an absolute URL that logs the user in on first use
// and then keeps working as a plain redirect. Optional params: path, hash.
func (c *Client) GetRedirectLink(ctx context.Context, token string, extra Params) (*Response, error) {
	params := Params{"token": token}
	return c.get(ctx, "get_redirect_link", params, extra)
}

// UploadFile uploads a file suitable to be passed as a file_attachment.
func (c *Client) UploadFile(ctx context.Context, token, filePath string, extra Params) (*Response, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("api: failed to open upload file: %w", err)
	}
	defer f.Close()

	var body strings.Builder
	w := multipart.NewWriter(&body)
	params := merge(Params{"token": token, "file_name": filepath.Base(filePath)}, extra)
	for k, v := range params {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("api: failed to write upload field: %w", err)
		}
	}
	part, err := w.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("api: failed to create upload part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("api: failed to read upload file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("api: failed to finish upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"upload_file", strings.NewReader(body.String()))
	if err != nil {
		return nil, fmt.Errorf("api: failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

// get issues a GET request to an endpoint with the merged parameters in the
// query string.
func (c *Client) get(ctx context.Context, endpoint string, params, extra Params) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("api: failed to build %s request: %w", endpoint, err)
	}
	req.URL.RawQuery = values(merge(params, extra)).Encode()
	return c.do(req)
}

// post issues a POST request to an endpoint with the merged parameters as a
// form-encoded body.
func (c *Client) post(ctx context.Context, endpoint string, params, extra Params) (*Response, error) {
	form := values(merge(params, extra)).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, strings.NewReader(form))
	if err != nil {
		return nil, fmt.Errorf("api: failed to build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// do performs exactly one network round trip and returns the raw response.
func (c *Client) do(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: failed to call %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: failed to read %s response: %w", req.URL.Path, err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

func merge(params, extra Params) Params {
	if len(extra) == 0 {
		return params
	}
	merged := make(Params, len(params)+len(extra))
	for k, v := range params {
		merged[k] = v
	}
	for k, v := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return merged
}

func values(params Params) url.Values {
	v := url.Values{}
	for k, val := range params {
		v.Set(k, val)
	}
	return v
}
