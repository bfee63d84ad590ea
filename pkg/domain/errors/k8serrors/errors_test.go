package k8serrors_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/kickplate/kickplate/pkg/domain/errors/k8serrors"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

func TestFromAPIError(t *testing.T) {
	gr := schema.GroupResource{Group: "edag.kickplate.com", Resource: "edags"}

	type when struct {
		err error
	}
	type then struct {
		code      int
		isMissing bool
		conflict  bool
	}

	for name, testcase := range map[string]struct {
		when
		then
	}{
		"not found from the API server": {
			when: when{err: apierrors.NewNotFound(gr, "g")},
			then: then{code: http.StatusNotFound, isMissing: true},
		},
		"already exists from the API server": {
			when: when{err: apierrors.NewAlreadyExists(gr, "g")},
			then: then{code: http.StatusConflict, conflict: true},
		},
		"forbidden from the API server": {
			when: when{err: apierrors.NewForbidden(gr, "g", errors.New("nope"))},
			then: then{code: http.StatusForbidden},
		},
		"wrapped status error": {
			when: when{err: fmt.Errorf("calling: %w", apierrors.NewNotFound(gr, "g"))},
			then: then{code: http.StatusNotFound, isMissing: true},
		},
		"deadline exceeded": {
			when: when{err: fmt.Errorf("calling: %w", context.DeadlineExceeded)},
			then: then{code: http.StatusGatewayTimeout},
		},
		"canceled": {
			when: when{err: context.Canceled},
			then: then{code: k8serrors.StatusClientClosedRequest},
		},
		"plain error": {
			when: when{err: errors.New("connection refused")},
			then: then{code: http.StatusInternalServerError},
		},
	} {
		t.Run(name, func(t *testing.T) {
			err := k8serrors.FromAPIError("test", testcase.when.err)

			code, ok := k8serrors.StatusCode(err)
			if !ok {
				t.Fatalf("no status in %v", err)
			}
			if code != testcase.then.code {
				t.Errorf("code = %d, want %d", code, testcase.then.code)
			}
			if got := k8serrors.IsMissing(err); got != testcase.then.isMissing {
				t.Errorf("IsMissing = %v", got)
			}
			if got := k8serrors.IsConflict(err); got != testcase.then.conflict {
				t.Errorf("IsConflict = %v", got)
			}
			if !errors.Is(err, testcase.when.err) {
				t.Errorf("cause is not reachable: %v", err)
			}
		})
	}

	t.Run("nil stays nil", func(t *testing.T) {
		if err := k8serrors.FromAPIError("test", nil); err != nil {
			t.Errorf("got %v", err)
		}
	})
}

func TestStatusCode_NoStatus(t *testing.T) {
	if _, ok := k8serrors.StatusCode(errors.New("plain")); ok {
		t.Error("plain error should not have a status")
	}
	if k8serrors.IsMissing(nil) || k8serrors.IsConflict(nil) {
		t.Error("nil should be neither missing nor conflict")
	}
}
