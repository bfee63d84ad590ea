package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/go-containerregistry/pkg/name"
	derr "github.com/kickplate/kickplate/pkg/domain/errors"
	"k8s.io/apimachinery/pkg/util/validation"
)

// Validator checks requests before they are built.
//
// It satisfies echo.Validator.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		n, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if n == "-" {
			return ""
		}
		return n
	})

	// error can be returned only for malformed tags or reserved names.
	if err := v.RegisterValidation("dns1123subdomain", func(fl validator.FieldLevel) bool {
		return len(validation.IsDNS1123Subdomain(fl.Field().String())) == 0
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("imageref", func(fl validator.FieldLevel) bool {
		_, err := name.ParseReference(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}

	return &Validator{v: v}
}

// Validate checks field constraints of i.
//
// GraphRequest is also checked for consistency between its steps.
// Rejections are reported as ErrInvalidGraph.
func (v *Validator) Validate(i any) error {
	if err := v.v.Struct(i); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return derr.InvalidGraph(err.Error())
		}
		reasons := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			reasons = append(reasons, describe(fe))
		}
		return derr.InvalidGraph(reasons...)
	}

	switch req := i.(type) {
	case GraphRequest:
		return ValidateGraph(req)
	case *GraphRequest:
		return ValidateGraph(*req)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "max":
		return fmt.Sprintf("%s should be %s %s", field, map[string]string{"min": "at least", "max": "at most"}[fe.Tag()], fe.Param())
	case "dns1123subdomain":
		return fmt.Sprintf(
			"%s should consist of lowercase alphanumeric characters, '-' or '.', and start and end with an alphanumeric character",
			field,
		)
	case "imageref":
		return fmt.Sprintf("%s should be a container image reference", field)
	default:
		return fmt.Sprintf("%s does not satisfy %s", field, fe.Tag())
	}
}

// ValidateGraph checks that steps of the graph are consistent with each other.
//
// It rejects duplicated stepnames, dependencies on unknown steps,
// and dependency cycles.
func ValidateGraph(req GraphRequest) error {
	reasons := []string{}

	index := map[string]int{}
	for nth, s := range req.Steps {
		if _, ok := index[s.Stepname]; ok {
			reasons = append(reasons, fmt.Sprintf("stepname %q is duplicated", s.Stepname))
			continue
		}
		index[s.Stepname] = nth
	}

	for _, s := range req.Steps {
		for _, d := range s.Dependencies {
			if _, ok := index[d]; !ok {
				reasons = append(reasons, fmt.Sprintf("step %q depends on unknown step %q", s.Stepname, d))
			}
		}
	}

	if len(reasons) != 0 {
		return derr.InvalidGraph(reasons...)
	}

	if cycle := findCycle(req.Steps, index); cycle != nil {
		return derr.InvalidGraph(
			fmt.Sprintf("dependency cycle: %s", strings.Join(cycle, " -> ")),
		)
	}
	return nil
}

// findCycle returns stepnames on a dependency cycle, or nil if there are none.
//
// Steps are visited in order, so the result is stable for a request.
func findCycle(steps []StepRequest, index map[string]int) []string {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make([]int, len(steps))
	path := []string{}

	var visit func(nth int) []string
	visit = func(nth int) []string {
		switch state[nth] {
		case visited:
			return nil
		case visiting:
			name := steps[nth].Stepname
			for i, p := range path {
				if p == name {
					return append(append([]string{}, path[i:]...), name)
				}
			}
			return []string{name, name}
		}

		state[nth] = visiting
		path = append(path, steps[nth].Stepname)
		for _, d := range steps[nth].Dependencies {
			if c := visit(index[d]); c != nil {
				return c
			}
		}
		path = path[:len(path)-1]
		state[nth] = visited
		return nil
	}

	for nth := range steps {
		if c := visit(nth); c != nil {
			return c
		}
	}
	return nil
}
