package capture

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter is a compiled boolean expression over [Candidate] fields, for
// example:
//
//	FileName startsWith "sampling" && Date >= "2024-01-01"
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles source. An empty source yields a nil Filter, which
// matches every candidate.
func CompileFilter(source string) (*Filter, error) {
	if source == "" {
		return nil, nil
	}

	program, err := expr.Compile(source, expr.Env(Candidate{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", source, err)
	}

	return &Filter{source: source, program: program}, nil
}

// String returns the filter's source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}

	return f.source
}

// Match reports whether c satisfies the filter.
func (f *Filter) Match(c Candidate) (bool, error) {
	if f == nil {
		return true, nil
	}

	out, err := expr.Run(f.program, c)
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", f.source, err)
	}

	ok, _ := out.(bool)

	return ok, nil
}

// Apply returns the candidates satisfying the filter, in order.
func (f *Filter) Apply(candidates []Candidate) ([]Candidate, error) {
	if f == nil {
		return candidates, nil
	}

	var out []Candidate

	for _, c := range candidates {
		ok, err := f.Match(c)
		if err != nil {
			return nil, err
		}

		if ok {
			out = append(out, c)
		}
	}

	return out, nil
}
