package todoist

import (
	"errors"
	"net/http"
	"testing"

	"github.com/Garee/todoist/pkg/api"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		resp    *api.Response
		failure bool
		kind    Kind
	}{
		{
			name: "OKObject",
			resp: &api.Response{StatusCode: http.StatusOK, Body: []byte(`{"sync_token": "abc"}`)},
		},
		{
			name: "OKBareString",
			resp: &api.Response{StatusCode: http.StatusOK, Body: []byte(`"ok"`)},
		},
		{
			name:    "LoginSentinelAt200",
			resp:    &api.Response{StatusCode: http.StatusOK, Body: []byte(`"LOGIN_ERROR"`)},
			failure: true,
			kind:    KindAuth,
		},
		{
			name:    "RegistrationSentinel",
			resp:    &api.Response{StatusCode: http.StatusBadRequest, Body: []byte(`"ALREADY_REGISTRED"`)},
			failure: true,
			kind:    KindRegistration,
		},
		{
			name:    "UnquotedSentinel",
			resp:    &api.Response{StatusCode: http.StatusOK, Body: []byte("INTERNAL_ERROR")},
			failure: true,
			kind:    KindInternal,
		},
		{
			name:    "StructuredErrorTag",
			resp:    &api.Response{StatusCode: http.StatusForbidden, Body: []byte(`{"error": "Invalid token", "error_tag": "AUTH_INVALID_TOKEN"}`)},
			failure: true,
			kind:    KindAuth,
		},
		{
			name:    "ErrorKeyAt200",
			resp:    &api.Response{StatusCode: http.StatusOK, Body: []byte(`{"error": "something broke"}`)},
			failure: true,
			kind:    KindGeneric,
		},
		{
			name:    "StatusFallbackNotFound",
			resp:    &api.Response{StatusCode: http.StatusNotFound, Body: []byte("no such page")},
			failure: true,
			kind:    KindNotFound,
		},
		{
			name:    "StatusFallbackServerError",
			resp:    &api.Response{StatusCode: http.StatusBadGateway, Body: []byte("")},
			failure: true,
			kind:    KindInternal,
		},
		{
			name: "SentinelLikeContentInsideObject",
			resp: &api.Response{StatusCode: http.StatusOK, Body: []byte(`{"content": "LOGIN_ERROR"}`)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := classify(tc.resp)
			if !tc.failure {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected failure, got success")
			}
			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("expected *RequestError, got %T", err)
			}
			if reqErr.Kind != tc.kind {
				t.Errorf("expected kind %v, got %v", tc.kind, reqErr.Kind)
			}
			if reqErr.Error() != string(tc.resp.Body) {
				t.Errorf("error message should be the body text, got %q", reqErr.Error())
			}
			// Same response, same verdict.
			if again := classify(tc.resp); (again == nil) != (err == nil) {
				t.Error("classification is not repeatable")
			}
		})
	}
}

func TestErrKind(t *testing.T) {
	reqErr := &RequestError{Kind: KindAuth, Response: &api.Response{Body: []byte(`"LOGIN_ERROR"`)}}
	if ErrKind(reqErr) != KindAuth {
		t.Errorf("expected KindAuth, got %v", ErrKind(reqErr))
	}
	if !IsAuthError(reqErr) {
		t.Error("expected IsAuthError to be true")
	}
	if IsNotFound(reqErr) {
		t.Error("expected IsNotFound to be false")
	}
	if ErrKind(errors.New("plain")) != KindGeneric {
		t.Errorf("plain errors should map to KindGeneric")
	}
}
