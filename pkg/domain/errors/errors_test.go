package errors_test

import (
	"errors"
	"fmt"
	"testing"

	derr "github.com/kickplate/kickplate/pkg/domain/errors"
)

func TestUndetermined(t *testing.T) {
	t.Run("it generates a reference and keeps the cause", func(t *testing.T) {
		cause := errors.New("etcd is on fire")
		err := derr.Undetermined(cause)

		u, ok := derr.AsUndetermined(err)
		if !ok {
			t.Fatalf("not undetermined: %v", err)
		}
		if u.Ref == "" {
			t.Error("empty ref")
		}
		if !errors.Is(err, cause) {
			t.Error("cause is not reachable")
		}
	})

	t.Run("references differ per failure", func(t *testing.T) {
		a, _ := derr.AsUndetermined(derr.Undetermined(errors.New("a")))
		b, _ := derr.AsUndetermined(derr.Undetermined(errors.New("b")))
		if a.Ref == b.Ref {
			t.Errorf("same ref: %s", a.Ref)
		}
	})

	t.Run("it does not rewrap an undetermined error", func(t *testing.T) {
		first := derr.Undetermined(errors.New("cause"))
		second := derr.Undetermined(fmt.Errorf("again: %w", first))

		u1, _ := derr.AsUndetermined(first)
		u2, _ := derr.AsUndetermined(second)
		if u1.Ref != u2.Ref {
			t.Errorf("ref changed: %s -> %s", u1.Ref, u2.Ref)
		}
	})
}

func TestMessages(t *testing.T) {
	for name, testcase := range map[string]struct {
		when error
		then string
	}{
		"already exists": {
			when: derr.GraphAlreadyExists("g"),
			then: "An EDAG with name g already exists",
		},
		"not found": {
			when: derr.GraphNotFound("missing"),
			then: "EDAG missing not found",
		},
		"invalid": {
			when: derr.InvalidGraph("a", "b"),
			then: "invalid EDAG: a; b",
		},
	} {
		t.Run(name, func(t *testing.T) {
			if got := testcase.when.Error(); got != testcase.then {
				t.Errorf("got %q, want %q", got, testcase.then)
			}
		})
	}
}

func TestAs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", derr.GraphNotFound("g"))

	nf, ok := derr.AsGraphNotFound(err)
	if !ok || nf.Name != "g" {
		t.Errorf("AsGraphNotFound = (%v, %v)", nf, ok)
	}
	if _, ok := derr.AsGraphAlreadyExists(err); ok {
		t.Error("should not be GraphAlreadyExists")
	}
	if _, ok := derr.AsUndetermined(nil); ok {
		t.Error("nil should not be undetermined")
	}
}
