package todoist

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Garee/todoist/pkg/api"
)

// Kind categorizes a failed API call so callers can discriminate
// programmatically.
type Kind int

const (
	KindGeneric Kind = iota
	KindAuth
	KindRegistration
	KindBadValue
	KindNotFound
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "authentication failure"
	case KindRegistration:
		return "registration conflict"
	case KindBadValue:
		return "invalid value"
	case KindNotFound:
		return "not found"
	case KindInternal:
		return "internal server error"
	default:
		return "request failed"
	}
}

// RequestError is returned whenever a Todoist API call fails. The message is
// the literal response body text; the raw response is carried for callers
// that need more.
type RequestError struct {
	Kind     Kind
	Response *api.Response
}

func (e *RequestError) Error() string {
	return e.Response.Text()
}

// ErrKind extracts the Kind of err, or KindGeneric if err is not a
// *RequestError.
func ErrKind(err error) Kind {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	return KindGeneric
}

// IsAuthError reports whether err is a RequestError of the authentication
// kind.
func IsAuthError(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Kind == KindAuth
}

// IsNotFound reports whether err is a RequestError of the not-found kind.
func IsNotFound(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Kind == KindNotFound
}

// sentinelKinds is the closed set of error sentinel strings the service
// returns as entire response bodies in lieu of structured errors. It mirrors
// the service's documented error vocabulary and has to be kept in sync by
// hand; it is not derived from any schema.
var sentinelKinds = map[string]Kind{
	"LOGIN_ERROR":                       KindAuth,
	"EMAIL_MISMATCH":                    KindAuth,
	"ACCOUNT_NOT_CONNECTED_WITH_GOOGLE": KindAuth,
	"ALREADY_REGISTRED":                 KindRegistration, // sic, the service misspells it
	"ERROR_EMAIL_FOUND":                 KindRegistration,
	"ERROR_PASSWORD_TOO_SHORT":          KindBadValue,
	"ERROR_NAME_IS_EMPTY":               KindBadValue,
	"ERROR_WRONG_DATE_SYNTAX":           KindBadValue,
	"INVALID_EMAIL":                     KindBadValue,
	"INVALID_TIMEZONE":                  KindBadValue,
	"INVALID_FULL_NAME":                 KindBadValue,
	"ERROR_PROJECT_NOT_FOUND":           KindNotFound,
	"ERROR_ITEM_NOT_FOUND":              KindNotFound,
	"INTERNAL_ERROR":                    KindInternal,
	"UNKNOWN_ERROR":                     KindGeneric,
}

// tagKinds maps the structured error_tag field of later API revisions to a
// kind. Like the sentinel table it is a hard-coded mirror of the service's
// vocabulary.
var tagKinds = map[string]Kind{
	"AUTH_INVALID_TOKEN":     KindAuth,
	"AUTH_CSRF_ERROR":        KindAuth,
	"AUTH_LOGIN_ERROR":       KindAuth,
	"EMAIL_ALREADY_REGISTED": KindRegistration, // sic
	"INVALID_ARGUMENT_VALUE": KindBadValue,
	"RESOURCE_NOT_FOUND":     KindNotFound,
	"SERVER_ERROR":           KindInternal,
}

// classify decides whether a raw response denotes a failure. It returns nil
// for success and a *RequestError otherwise. The decision is a pure function
// of the response content: the status code, the sentinel-string vocabulary,
// and, in the structured scheme, the presence of an "error" key in the JSON
// body.
func classify(resp *api.Response) error {
	if resp.StatusCode != http.StatusOK {
		return &RequestError{Kind: failureKind(resp), Response: resp}
	}
	if _, ok := sentinelKind(resp.Body); ok {
		return &RequestError{Kind: failureKind(resp), Response: resp}
	}
	if hasErrorKey(resp.Body) {
		return &RequestError{Kind: failureKind(resp), Response: resp}
	}
	return nil
}

// failureKind looks up the specific kind for a failing response: sentinel
// body first, then the structured error_tag/error fields, then a status-code
// fallback.
func failureKind(resp *api.Response) Kind {
	if k, ok := sentinelKind(resp.Body); ok {
		return k
	}
	var structured struct {
		Error    string `json:"error"`
		ErrorTag string `json:"error_tag"`
	}
	if err := json.Unmarshal(resp.Body, &structured); err == nil {
		if k, ok := tagKinds[structured.ErrorTag]; ok {
			return k
		}
		if k, ok := sentinelKinds[structured.Error]; ok {
			return k
		}
		if structured.Error != "" || structured.ErrorTag != "" {
			return KindGeneric
		}
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return KindAuth
	case resp.StatusCode == http.StatusNotFound:
		return KindNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return KindBadValue
	case resp.StatusCode >= http.StatusInternalServerError:
		return KindInternal
	default:
		return KindGeneric
	}
}

// sentinelKind matches the entire body against the sentinel table. Sentinels
// arrive as bare quoted strings, so surrounding quotes and whitespace are
// stripped before the exact match.
func sentinelKind(body []byte) (Kind, bool) {
	text := strings.Trim(strings.TrimSpace(string(body)), `"`)
	k, ok := sentinelKinds[text]
	return k, ok
}

// hasErrorKey reports whether the body is a JSON object containing an
// "error" key, the failure signal of the structured scheme.
func hasErrorKey(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return false
	}
	_, ok := obj["error"]
	return ok
}
