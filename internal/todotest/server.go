// Package todotest implements an in-memory fake of the Todoist service for
// tests. It speaks the same endpoints and response shapes as the real API,
// including the sentinel error bodies, so client behavior can be exercised
// against it over plain HTTP.
package todotest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
)

// Server is the fake service. Create one with New and mount Handler in an
// httptest server. Safe for concurrent use.
type Server struct {
	mu      sync.Mutex
	engine  *gin.Engine
	nextID  int64
	byEmail map[string]*account
	byToken map[string]*account
}

type account struct {
	user      map[string]any
	password  string
	google    bool
	projects  []map[string]any
	items     []map[string]any
	notes     []map[string]any
	labels    []map[string]any
	filters   []map[string]any
	reminders []map[string]any
}

// New creates a fake service with no registered users.
func New() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		engine:  gin.New(),
		byEmail: map[string]*account{},
		byToken: map[string]*account{},
	}
	s.engine.GET("/login", s.login)
	s.engine.GET("/login_with_google", s.loginWithGoogle)
	s.engine.POST("/login_with_google", s.loginWithGoogle)
	s.engine.POST("/register", s.register)
	s.engine.POST("/delete_user", s.deleteUser)
	s.engine.GET("/sync", s.sync)
	s.engine.POST("/sync", s.sync)
	s.engine.POST("/add_item", s.addItem)
	s.engine.POST("/quick/add", s.quickAdd)
	s.engine.GET("/get_all_completed_items", s.completedItems)
	s.engine.GET("/query", s.query)
	s.engine.GET("/get_productivity_stats", s.productivityStats)
	s.engine.POST("/update_notification_setting", s.updateNotificationSetting)
	s.engine.GET("/get_redirect_link", s.redirectLink)
	s.engine.POST("/upload_file", s.uploadFile)
	return s
}

// Handler returns the HTTP handler for mounting in an httptest server.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

// param reads a request parameter from the form body or the query string,
// matching how the client encodes GET and POST requests.
func param(c *gin.Context, name string) string {
	if v := c.PostForm(name); v != "" {
		return v
	}
	return c.Query(name)
}

// sentinel writes one of the service's bare-string error bodies. The status
// is 200: the body alone signals the failure.
func sentinel(c *gin.Context, body string) {
	c.String(http.StatusOK, "%q", body)
}

func (s *Server) auth(c *gin.Context) *account {
	acct, ok := s.byToken[param(c, "token")]
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "Invalid token",
			"error_tag": "AUTH_INVALID_TOKEN",
		})
		return nil
	}
	return acct
}

func (s *Server) register(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := param(c, "email")
	fullName := param(c, "full_name")
	password := param(c, "password")
	switch {
	case fullName == "":
		sentinel(c, "ERROR_NAME_IS_EMPTY")
		return
	case len(password) < 5:
		sentinel(c, "ERROR_PASSWORD_TOO_SHORT")
		return
	}
	if _, ok := s.byEmail[email]; ok {
		sentinel(c, "ALREADY_REGISTRED")
		return
	}

	acct := s.createAccount(email, fullName, password)
	c.JSON(http.StatusOK, acct.user)
}

// createAccount stores a new account with an inbox project.
func (s *Server) createAccount(email, fullName, password string) *account {
	token := fmt.Sprintf("token-%s", email)
	acct := &account{
		password: password,
		user: map[string]any{
			"id":        s.id(),
			"email":     email,
			"full_name": fullName,
			"token":     token,
			"api_token": token,
		},
	}
	inbox := map[string]any{
		"id":            s.id(),
		"name":          "Inbox",
		"item_order":    0,
		"is_archived":   0,
		"is_deleted":    0,
		"inbox_project": true,
	}
	acct.user["inbox_project"] = inbox["id"]
	acct.projects = append(acct.projects, inbox)
	s.byEmail[email] = acct
	s.byToken[token] = acct
	return acct
}

// loginWithGoogle serves both plain Google logins (GET) and auto-signup
// registrations (POST with auto_signup=1). Accounts created with a password
// are not connected to Google and refuse the Google path.
func (s *Server) loginWithGoogle(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if param(c, "oauth2_token") == "" {
		sentinel(c, "LOGIN_ERROR")
		return
	}
	email := param(c, "email")
	acct, ok := s.byEmail[email]

	if c.Request.Method == http.MethodPost && param(c, "auto_signup") == "1" {
		if !ok {
			acct = s.createAccount(email, param(c, "full_name"), "")
			acct.google = true
		}
		if !acct.google {
			sentinel(c, "ACCOUNT_NOT_CONNECTED_WITH_GOOGLE")
			return
		}
		c.JSON(http.StatusOK, acct.user)
		return
	}

	if !ok {
		sentinel(c, "LOGIN_ERROR")
		return
	}
	if !acct.google {
		sentinel(c, "ACCOUNT_NOT_CONNECTED_WITH_GOOGLE")
		return
	}
	c.JSON(http.StatusOK, acct.user)
}

func (s *Server) login(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.byEmail[param(c, "email")]
	if !ok || acct.password != param(c, "password") {
		sentinel(c, "LOGIN_ERROR")
		return
	}
	c.JSON(http.StatusOK, acct.user)
}

func (s *Server) deleteUser(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.auth(c)
	if acct == nil {
		return
	}
	if param(c, "current_password") != acct.password {
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "Invalid password",
			"error_tag": "AUTH_LOGIN_ERROR",
		})
		return
	}
	delete(s.byEmail, acct.user["email"].(string))
	delete(s.byToken, acct.user["token"].(string))
	c.String(http.StatusOK, `"ok"`)
}

func (s *Server) sync(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.auth(c)
	if acct == nil {
		return
	}

	resp := gin.H{
		"sync_token": fmt.Sprintf("st-%d", s.id()),
		"full_sync":  true,
	}

	if commands := param(c, "commands"); commands != "" {
		var cmds []struct {
			Type   string         `json:"type"`
			Args   map[string]any `json:"args"`
			UUID   string         `json:"uuid"`
			TempID string         `json:"temp_id"`
		}
		if err := json.Unmarshal([]byte(commands), &cmds); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid commands",
				"error_tag": "INVALID_ARGUMENT_VALUE",
			})
			return
		}
		status := gin.H{}
		mapping := gin.H{}
		for _, cmd := range cmds {
			if newID, err := s.apply(acct, cmd.Type, cmd.Args); err != nil {
				status[cmd.UUID] = gin.H{
					"error":     err.message,
					"error_tag": err.tag,
				}
			} else {
				status[cmd.UUID] = "ok"
				if newID != 0 {
					mapping[cmd.TempID] = newID
				}
			}
		}
		resp["sync_status"] = status
		resp["temp_id_mapping"] = mapping
	}

	var types []string
	if raw := param(c, "resource_types"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &types); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid resource types",
				"error_tag": "INVALID_ARGUMENT_VALUE",
			})
			return
		}
	}
	wants := func(name string) bool {
		for _, t := range types {
			if t == "all" || t == name {
				return true
			}
		}
		return false
	}
	if wants("user") {
		resp["user"] = acct.user
	}
	if wants("projects") {
		resp["projects"] = live(acct.projects)
	}
	if wants("items") {
		resp["items"] = live(acct.items)
	}
	if wants("notes") {
		resp["notes"] = live(acct.notes)
	}
	if wants("labels") {
		resp["labels"] = live(acct.labels)
	}
	if wants("filters") {
		resp["filters"] = live(acct.filters)
	}
	if wants("reminders") {
		resp["reminders"] = live(acct.reminders)
	}
	c.JSON(http.StatusOK, resp)
}

// live filters out deleted resources.
func live(resources []map[string]any) []map[string]any {
	kept := make([]map[string]any, 0, len(resources))
	for _, r := range resources {
		if toID(r["is_deleted"]) != 0 {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

type commandFailure struct {
	message string
	tag     string
}

func (e *commandFailure) Error() string { return e.message }

func fail(tag, format string, args ...any) *commandFailure {
	return &commandFailure{message: fmt.Sprintf(format, args...), tag: tag}
}

// apply executes one sync command against an account. It returns the ID of
// a created resource, if any, for the temp ID mapping.
func (s *Server) apply(acct *account, cmdType string, args map[string]any) (int64, *commandFailure) {
	switch cmdType {
	case "project_add":
		p := map[string]any{
			"id":          s.id(),
			"item_order":  len(acct.projects),
			"is_archived": 0,
			"is_deleted":  0,
		}
		fold(p, args)
		acct.projects = append(acct.projects, p)
		return p["id"].(int64), nil
	case "project_update":
		p := find(acct.projects, argID(args, "id"))
		if p == nil {
			return 0, fail("RESOURCE_NOT_FOUND", "Project not found")
		}
		fold(p, args)
		return 0, nil
	case "project_delete":
		for _, id := range argIDs(args, "ids") {
			p := find(acct.projects, id)
			if p == nil {
				return 0, fail("RESOURCE_NOT_FOUND", "Project not found")
			}
			p["is_deleted"] = 1
			for _, item := range acct.items {
				if toID(item["project_id"]) == id {
					item["is_deleted"] = 1
				}
			}
		}
		return 0, nil
	case "project_archive":
		p := find(acct.projects, argID(args, "id"))
		if p == nil {
			return 0, fail("RESOURCE_NOT_FOUND", "Project not found")
		}
		p["is_archived"] = 1
		return 0, nil
	case "project_unarchive":
		p := find(acct.projects, argID(args, "id"))
		if p == nil {
			return 0, fail("RESOURCE_NOT_FOUND", "Project not found")
		}
		p["is_archived"] = 0
		return 0, nil
	case "project_reorder":
		mapping, ok := args["id_order_mapping"].(map[string]any)
		if !ok {
			return 0, fail("INVALID_ARGUMENT_VALUE", "Invalid order mapping")
		}
		for key, order := range mapping {
			id, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return 0, fail("INVALID_ARGUMENT_VALUE", "Invalid project id %q", key)
			}
			p := find(acct.projects, id)
			if p == nil {
				return 0, fail("RESOURCE_NOT_FOUND", "Project not found")
			}
			p["item_order"] = int(order.(float64))
		}
		return 0, nil
	case "item_update":
		item := find(acct.items, argID(args, "id"))
		if item == nil {
			return 0, fail("RESOURCE_NOT_FOUND", "Item not found")
		}
		fold(item, args)
		return 0, nil
	case "item_delete":
		for _, id := range argIDs(args, "ids") {
			item := find(acct.items, id)
			if item == nil {
				return 0, fail("RESOURCE_NOT_FOUND", "Item not found")
			}
			item["is_deleted"] = 1
		}
		return 0, nil
	case "item_complete":
		for _, id := range argIDs(args, "ids") {
			item := find(acct.items, id)
			if item == nil {
				return 0, fail("RESOURCE_NOT_FOUND", "Item not found")
			}
			item["checked"] = 1
		}
		return 0, nil
	case "item_uncomplete":
		for _, id := range argIDs(args, "ids") {
			item := find(acct.items, id)
			if item == nil {
				return 0, fail("RESOURCE_NOT_FOUND", "Item not found")
			}
			item["checked"] = 0
		}
		return 0, nil
	case "item_move":
		to := argID(args, "to_project")
		if find(acct.projects, to) == nil {
			return 0, fail("RESOURCE_NOT_FOUND", "Project not found")
		}
		groups, ok := args["project_items"].(map[string]any)
		if !ok {
			return 0, fail("INVALID_ARGUMENT_VALUE", "Invalid project items")
		}
		for _, ids := range groups {
			for _, raw := range ids.([]any) {
				item := find(acct.items, toID(raw))
				if item == nil {
					return 0, fail("RESOURCE_NOT_FOUND", "Item not found")
				}
				item["project_id"] = to
			}
		}
		return 0, nil
	case "note_add":
		n := map[string]any{
			"id":         s.id(),
			"is_deleted": 0,
		}
		fold(n, args)
		acct.notes = append(acct.notes, n)
		return n["id"].(int64), nil
	case "note_update":
		n := find(acct.notes, argID(args, "id"))
		if n == nil {
			return 0, fail("RESOURCE_NOT_FOUND", "Note not found")
		}
		fold(n, args)
		return 0, nil
	case "note_delete":
		n := find(acct.notes, argID(args, "id"))
		if n == nil {
			return 0, fail("RESOURCE_NOT_FOUND", "Note not found")
		}
		n["is_deleted"] = 1
		return 0, nil
	case "label_register":
		l := map[string]any{
			"id":         s.id(),
			"is_deleted": 0,
		}
		fold(l, args)
		acct.labels = append(acct.labels, l)
		return l["id"].(int64), nil
	case "label_update":
		l := find(acct.labels, argID(args, "id"))
		if l == nil {
			return 0, fail("RESOURCE_NOT_FOUND", "Label not found")
		}
		fold(l, args)
		return 0, nil
	case "label_delete":
		l := find(acct.labels, argID(args, "id"))
		if l == nil {
			return 0, fail("RESOURCE_NOT_FOUND", "Label not found")
		}
		l["is_deleted"] = 1
		return 0, nil
	case "filter_add":
		f := map[string]any{
			"id":         s.id(),
			"is_deleted": 0,
		}
		fold(f, args)
		acct.filters = append(acct.filters, f)
		return f["id"].(int64), nil
	case "filter_update":
		f := find(acct.filters, argID(args, "id"))
		if f == nil {
			return 0, fail("RESOURCE_NOT_FOUND", "Filter not found")
		}
		fold(f, args)
		return 0, nil
	case "filter_delete":
		f := find(acct.filters, argID(args, "id"))
		if f == nil {
			return 0, fail("RESOURCE_NOT_FOUND", "Filter not found")
		}
		f["is_deleted"] = 1
		return 0, nil
	case "reminder_add":
		if find(acct.items, argID(args, "item_id")) == nil {
			return 0, fail("RESOURCE_NOT_FOUND", "Item not found")
		}
		r := map[string]any{
			"id":         s.id(),
			"is_deleted": 0,
		}
		fold(r, args)
		acct.reminders = append(acct.reminders, r)
		return r["id"].(int64), nil
	case "reminder_delete":
		r := find(acct.reminders, argID(args, "id"))
		if r == nil {
			return 0, fail("RESOURCE_NOT_FOUND", "Reminder not found")
		}
		r["is_deleted"] = 1
		return 0, nil
	case "clear_locations":
		kept := acct.reminders[:0]
		for _, r := range acct.reminders {
			if r["type"] != "location" {
				kept = append(kept, r)
			}
		}
		acct.reminders = kept
		return 0, nil
	case "user_update", "update_goals":
		fold(acct.user, args)
		return 0, nil
	case "share_project", "take_ownership":
		p := find(acct.projects, argID(args, "project_id"))
		if p == nil {
			return 0, fail("RESOURCE_NOT_FOUND", "Project not found")
		}
		p["shared"] = true
		return 0, nil
	case "delete_collaborator":
		if find(acct.projects, argID(args, "project_id")) == nil {
			return 0, fail("RESOURCE_NOT_FOUND", "Project not found")
		}
		return 0, nil
	}
	return 0, fail("INVALID_ARGUMENT_VALUE", "Unknown command type %q", cmdType)
}

// fold copies command args into a stored resource, normalizing JSON floats
// back to ints so responses round-trip the way the real service does.
func fold(resource map[string]any, args map[string]any) {
	for k, v := range args {
		if f, ok := v.(float64); ok && f == float64(int64(f)) {
			resource[k] = int64(f)
			continue
		}
		resource[k] = v
	}
}

func find(resources []map[string]any, id int64) map[string]any {
	for _, r := range resources {
		if toID(r["id"]) != id {
			continue
		}
		if toID(r["is_deleted"]) != 0 {
			return nil
		}
		return r
	}
	return nil
}

func toID(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func argID(args map[string]any, key string) int64 { return toID(args[key]) }

func argIDs(args map[string]any, key string) []int64 {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		ids = append(ids, toID(v))
	}
	return ids
}

func (s *Server) addItem(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.auth(c)
	if acct == nil {
		return
	}
	item := map[string]any{
		"id":         s.id(),
		"content":    param(c, "content"),
		"project_id": toID(acct.user["inbox_project"]),
		"checked":    0,
		"is_deleted": 0,
		"priority":   1,
	}
	if raw := param(c, "project_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || find(acct.projects, id) == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Project not found",
				"error_tag": "RESOURCE_NOT_FOUND",
			})
			return
		}
		item["project_id"] = id
	}
	if ds := param(c, "date_string"); ds != "" {
		item["date_string"] = ds
	}
	if raw := param(c, "priority"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid priority",
				"error_tag": "INVALID_ARGUMENT_VALUE",
			})
			return
		}
		item["priority"] = p
	}
	acct.items = append(acct.items, item)
	c.JSON(http.StatusOK, item)
}

func (s *Server) quickAdd(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.auth(c)
	if acct == nil {
		return
	}
	item := map[string]any{
		"id":         s.id(),
		"content":    param(c, "text"),
		"project_id": toID(acct.user["inbox_project"]),
		"checked":    0,
		"is_deleted": 0,
		"priority":   1,
	}
	acct.items = append(acct.items, item)
	c.JSON(http.StatusOK, item)
}

func (s *Server) completedItems(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.auth(c)
	if acct == nil {
		return
	}
	limit := 30
	if raw := param(c, "limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	offset := 0
	if raw := param(c, "offset"); raw != "" {
		offset, _ = strconv.Atoi(raw)
	}
	var projectID int64
	if raw := param(c, "project_id"); raw != "" {
		projectID, _ = strconv.ParseInt(raw, 10, 64)
	}

	completed := make([]map[string]any, 0)
	for _, item := range live(acct.items) {
		if toID(item["checked"]) != 1 {
			continue
		}
		if projectID != 0 && toID(item["project_id"]) != projectID {
			continue
		}
		completed = append(completed, item)
	}
	if offset > len(completed) {
		offset = len(completed)
	}
	end := offset + limit
	if end > len(completed) {
		end = len(completed)
	}
	c.JSON(http.StatusOK, gin.H{"items": completed[offset:end]})
}

func (s *Server) query(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.auth(c)
	if acct == nil {
		return
	}
	var queries []string
	if err := json.Unmarshal([]byte(param(c, "queries")), &queries); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid queries",
			"error_tag": "INVALID_ARGUMENT_VALUE",
		})
		return
	}

	results := make([]gin.H, 0, len(queries))
	for _, q := range queries {
		if q == "viewall" {
			groups := make([]gin.H, 0, len(acct.projects))
			for _, p := range live(acct.projects) {
				uncompleted := make([]map[string]any, 0)
				completed := make([]map[string]any, 0)
				for _, item := range live(acct.items) {
					if toID(item["project_id"]) != toID(p["id"]) {
						continue
					}
					if toID(item["checked"]) == 1 {
						completed = append(completed, item)
					} else {
						uncompleted = append(uncompleted, item)
					}
				}
				groups = append(groups, gin.H{
					"uncompleted": uncompleted,
					"completed":   completed,
				})
			}
			results = append(results, gin.H{"type": q, "query": q, "data": groups})
			continue
		}
		matched := make([]map[string]any, 0)
		for _, item := range live(acct.items) {
			if toID(item["checked"]) == 1 {
				continue
			}
			if q == "overdue" || q == "no due date" || q == "today" || q == "tomorrow" {
				if item["date_string"] != q && q != "no due date" {
					continue
				}
				if q == "no due date" && item["date_string"] != nil {
					continue
				}
			}
			matched = append(matched, item)
		}
		results = append(results, gin.H{"type": q, "query": q, "data": matched})
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) productivityStats(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.auth(c)
	if acct == nil {
		return
	}
	completed := 0
	for _, item := range live(acct.items) {
		if toID(item["checked"]) == 1 {
			completed++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"karma":                acct.user["karma"],
		"completed_count":      completed,
		"karma_trend":          "up",
		"karma_update_reasons": []any{},
	})
}

func (s *Server) updateNotificationSetting(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.auth(c)
	if acct == nil {
		return
	}
	service := param(c, "service")
	if service != "email" && service != "push" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid service",
			"error_tag": "INVALID_ARGUMENT_VALUE",
		})
		return
	}
	if param(c, "notification_type") == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid notification type",
			"error_tag": "INVALID_ARGUMENT_VALUE",
		})
		return
	}
	c.String(http.StatusOK, `"ok"`)
}

func (s *Server) uploadFile(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.auth(c)
	if acct == nil {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Missing file part",
			"error_tag": "INVALID_ARGUMENT_VALUE",
		})
		return
	}
	name := param(c, "file_name")
	if name == "" {
		name = fh.Filename
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Unreadable file part",
			"error_tag": "INVALID_ARGUMENT_VALUE",
		})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Unreadable file part",
			"error_tag": "INVALID_ARGUMENT_VALUE",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"file_name": name,
		"file_size": len(data),
		"file_url":  fmt.Sprintf("https://files.todoist.com/%s", name),
	})
}

func (s *Server) redirectLink(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.auth(c)
	if acct == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"link": fmt.Sprintf("https://todoist.com/secureRedirect?token=%s", acct.user["token"]),
	})
}
