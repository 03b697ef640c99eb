package streamsvc

import (
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/rzbill/flume/internal/stream"
)

// celFilter wraps a compiled CEL program evaluated per range entry. When
// disabled, Eval always returns true.
type celFilter struct {
	prog    cel.Program
	enabled bool
}

func newCELFilter(expr string) (celFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return celFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("id_ms", cel.UintType),
		cel.Variable("id_seq", cel.UintType),
		cel.Variable("fields", cel.ListType(cel.StringType)),
		cel.Variable("text", cel.StringType),
		cel.Variable("size", cel.IntType),
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return celFilter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return celFilter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return celFilter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return celFilter{}, err
	}
	return celFilter{prog: prog, enabled: true}, nil
}

// Eval evaluates the compiled expression against an entry. When disabled,
// returns true. Evaluation errors drop the entry rather than failing the scan.
func (f celFilter) Eval(e stream.Entry) bool {
	if !f.enabled {
		return true
	}
	fields := make([]string, 0, len(e.Fields))
	size := 0
	for _, fb := range e.Fields {
		fields = append(fields, string(fb))
		size += len(fb)
	}
	out, _, err := f.prog.Eval(map[string]any{
		"id":     e.ID.String(),
		"id_ms":  e.ID.Ms,
		"id_seq": e.ID.Seq,
		"fields": fields,
		"text":   strings.Join(fields, " "),
		"size":   int64(size),
		"now_ms": time.Now().UnixMilli(),
	})
	if err != nil {
		return false
	}
	keep, ok := out.Value().(bool)
	return ok && keep
}
