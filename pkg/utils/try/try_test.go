package try_test

import (
	"errors"
	"testing"

	"github.com/kickplate/kickplate/pkg/utils/try"
)

type spyFataler struct {
	fatal   []any
	helpers int
}

func (f *spyFataler) Fatal(args ...any) {
	f.fatal = append(f.fatal, args...)
}

func (f *spyFataler) Helper() {
	f.helpers += 1
}

func TestTry(t *testing.T) {
	cause := errors.New("cluster unreachable")

	type then struct {
		value   int
		dflt    int
		err     error
		fatal   int
		helpers int
	}
	for name, testcase := range map[string]struct {
		when try.Either[int]
		then then
	}{
		"ok": {
			when: try.To(42, nil),
			then: then{value: 42, dflt: 42},
		},
		"no good": {
			when: try.To(42, cause),
			then: then{value: 0, dflt: 99, err: cause, fatal: 1, helpers: 1},
		},
	} {
		t.Run(name, func(t *testing.T) {
			spy := &spyFataler{}
			if got := testcase.when.OrFatal(spy); got != testcase.then.value {
				t.Errorf("OrFatal = %d", got)
			}
			if len(spy.fatal) != testcase.then.fatal || spy.helpers != testcase.then.helpers {
				t.Errorf("Fatal called with %v, Helper called %d times", spy.fatal, spy.helpers)
			}
			if testcase.then.fatal != 0 && !errors.Is(spy.fatal[0].(error), cause) {
				t.Errorf("Fatal called with %v", spy.fatal)
			}

			if got := testcase.when.OrDefault(99); got != testcase.then.dflt {
				t.Errorf("OrDefault = %d", got)
			}

			v, err := testcase.when.Get()
			if v != testcase.then.value || !errors.Is(err, testcase.then.err) {
				t.Errorf("Get = (%d, %v)", v, err)
			}
		})
	}
}
