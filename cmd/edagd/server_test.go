package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kickplate/kickplate/pkg/auth"
	"github.com/kickplate/kickplate/pkg/domain"
	derr "github.com/kickplate/kickplate/pkg/domain/errors"
	"github.com/kickplate/kickplate/pkg/metrics"
	"github.com/kickplate/kickplate/pkg/service/mock"
)

type tokensFunc func(ctx context.Context, token string) (auth.Principal, error)

func (f tokensFunc) Validate(ctx context.Context, token string) (auth.Principal, error) {
	return f(ctx, token)
}

// tokens accepts "user" and "admin" as tokens of principals having every scope.
var tokens = tokensFunc(func(_ context.Context, token string) (auth.Principal, error) {
	scopes := []string{auth.ScopeRead, auth.ScopeWrite, auth.ScopeRun, auth.ScopeDelete}
	switch token {
	case "user":
		return auth.Principal{Subject: "u", Roles: []string{auth.RoleUser}, Scopes: scopes}, nil
	case "admin":
		return auth.Principal{Subject: "a", Roles: []string{auth.RoleUser, auth.RoleAdmin}, Scopes: scopes}, nil
	case "reader":
		return auth.Principal{Subject: "r", Roles: []string{auth.RoleUser}, Scopes: []string{auth.ScopeRead}}, nil
	default:
		return auth.Principal{}, auth.ErrInvalidToken
	}
})

func newTestServer(t *testing.T) (*mock.MockService, http.Handler, *bytes.Buffer) {
	t.Helper()
	svc := mock.New(t)
	svc.Impl.CreateGraph = func(ctx context.Context, req domain.GraphRequest) error {
		return nil
	}
	svc.Impl.RunGraph = func(ctx context.Context, edagname string) (domain.RunResponse, error) {
		switch edagname {
		case "missing":
			return domain.RunResponse{}, derr.GraphNotFound(edagname)
		case "broken":
			return domain.RunResponse{}, &derr.ErrUndetermined{Ref: "ref-1"}
		}
		return domain.RunResponse{Id: edagname + "-aaaaaaaa"}, nil
	}
	svc.Impl.GetStatus = func(ctx context.Context, runID string) (domain.StatusDocument, error) {
		return domain.StatusDocument{Steps: []domain.StepStatus{}}, nil
	}

	reg := prometheus.NewRegistry()
	metrics.New(reg).Observe("create_graph", metrics.OutcomeOk, time.Millisecond)

	logs := new(bytes.Buffer)
	logger := log.New("test")
	logger.SetOutput(logs)
	logger.SetLevel(log.DEBUG)

	return svc, BuildServer(svc, tokens, reg, logger), logs
}

func TestBuildServer(t *testing.T) {
	type when struct {
		method string
		target string
		token  string
		body   string
	}
	type then struct {
		code int
		body string
	}

	graph := `{"graphname": "g", "steps": [{"stepname": "s1", "image": "busybox"}]}`

	for name, testcase := range map[string]struct {
		when when
		then then
	}{
		"health needs no token": {
			when: when{method: http.MethodGet, target: "/health"},
			then: then{code: http.StatusOK, body: `{"status":"ok"}`},
		},
		"creating EDAG": {
			when: when{method: http.MethodPost, target: "/api/v1/edag", token: "user", body: graph},
			then: then{code: http.StatusOK, body: ``},
		},
		"creating EDAG without token": {
			when: when{method: http.MethodPost, target: "/api/v1/edag/", body: graph},
			then: then{code: http.StatusUnauthorized, body: `{"detail":"No 'Authorization' header in request"}`},
		},
		"creating EDAG with a forged token": {
			when: when{method: http.MethodPost, target: "/api/v1/edag/", token: "forged", body: graph},
			then: then{code: http.StatusUnauthorized, body: `{"detail":"Invalid token provided"}`},
		},
		"creating EDAG without write scope": {
			when: when{method: http.MethodPost, target: "/api/v1/edag/", token: "reader", body: graph},
			then: then{
				code: http.StatusForbidden,
				body: `{"detail":"Insufficient permissions to perform this action, missing scopes: [kickplate:edag:write]"}`,
			},
		},
		"creating invalid EDAG": {
			when: when{method: http.MethodPost, target: "/api/v1/edag/", token: "user", body: `{"graphname": "G!", "steps": [{"stepname": "s1", "image": "busybox"}]}`},
			then: then{
				code: http.StatusBadRequest,
				body: `{"detail":"graphname should consist of lowercase alphanumeric characters, '-' or '.', and start and end with an alphanumeric character"}`,
			},
		},
		"running EDAG": {
			when: when{method: http.MethodPost, target: "/api/v1/edag/g/run", token: "user"},
			then: then{code: http.StatusOK, body: `{"id":"g-aaaaaaaa"}`},
		},
		"running missing EDAG": {
			when: when{method: http.MethodPost, target: "/api/v1/edag/missing/run/", token: "user"},
			then: then{code: http.StatusNotFound, body: `{"detail":"EDAG missing not found"}`},
		},
		"running EDAG with an unknown failure": {
			when: when{method: http.MethodPost, target: "/api/v1/edag/broken/run/", token: "user"},
			then: then{
				code: http.StatusInternalServerError,
				body: `{"detail":"An unknown error occurred, please try again or contact an admin (ref: ref-1)"}`,
			},
		},
		"reading status": {
			when: when{method: http.MethodGet, target: "/api/v1/edag/g-aaaaaaaa/run", token: "reader"},
			then: then{
				code: http.StatusOK,
				body: `{"graphname":null,"completed_time":null,"phase":null,"creation_time":null,"steps":[]}`,
			},
		},
		"deleting EDAG as a user": {
			when: when{method: http.MethodDelete, target: "/api/v1/edag/g", token: "user"},
			then: then{
				code: http.StatusForbidden,
				body: `{"detail":"Insufficient permissions to perform this action, missing roles: [kickplate:admin]"}`,
			},
		},
		"deleting EDAG as an admin": {
			when: when{method: http.MethodDelete, target: "/api/v1/edag/g", token: "admin"},
			then: then{code: http.StatusNotImplemented, body: `{"detail":"deleting EDAG is not implemented"}`},
		},
		"unknown route": {
			when: when{method: http.MethodGet, target: "/api/v2/edag", token: "user"},
			then: then{code: http.StatusNotFound, body: `{"detail":"Not Found"}`},
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, testee, _ := newTestServer(t)

			var body io.Reader
			if testcase.when.body != "" {
				body = strings.NewReader(testcase.when.body)
			}
			req := httptest.NewRequest(testcase.when.method, testcase.when.target, body)
			if body != nil {
				req.Header.Set("Content-Type", "application/json")
			}
			if testcase.when.token != "" {
				req.Header.Set("Authorization", "Bearer "+testcase.when.token)
			}
			resp := httptest.NewRecorder()

			testee.ServeHTTP(resp, req)

			if resp.Code != testcase.then.code {
				t.Errorf("code = %d, want %d (body: %s)", resp.Code, testcase.then.code, resp.Body.String())
			}
			if got := strings.TrimSpace(resp.Body.String()); got != testcase.then.body {
				t.Errorf("body = %s, want %s", got, testcase.then.body)
			}
		})
	}
}

func TestBuildServer_metrics(t *testing.T) {
	_, testee, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	testee.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("code = %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `kickplate_edag_operations_total{operation="create_graph",outcome="ok"} 1`) {
		t.Errorf("metrics are not exposed:\n%s", resp.Body.String())
	}
}

func TestBuildServer_causesAreLoggedNotResponded(t *testing.T) {
	svc, testee, logs := newTestServer(t)
	svc.Impl.RunGraph = func(ctx context.Context, edagname string) (domain.RunResponse, error) {
		return domain.RunResponse{}, derr.Undetermined(errors.New("etcdserver: request timed out"))
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/edag/g/run/", nil)
	req.Header.Set("Authorization", "Bearer user")
	resp := httptest.NewRecorder()
	testee.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", resp.Code)
	}
	var got map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"detail"}, keys(got)); diff != "" {
		t.Errorf("body keys (-want +got):\n%s", diff)
	}
	if strings.Contains(got["detail"], "etcdserver") {
		t.Errorf("cause leaks: %s", got["detail"])
	}
	if !strings.Contains(logs.String(), "etcdserver: request timed out") {
		t.Errorf("cause is not logged:\n%s", logs.String())
	}
}

func keys(m map[string]string) []string {
	ks := []string{}
	for k := range m {
		ks = append(ks, k)
	}
	return ks
}
