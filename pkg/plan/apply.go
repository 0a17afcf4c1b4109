package plan

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/phprefactor/pkg/refactor"
)

// ErrUnknownOperation is returned for an operation name the engine lacks.
var ErrUnknownOperation = errors.New("unknown operation")

// StepResult is the outcome of one operation of a file.
type StepResult struct {
	Operation Operation       `json:"operation" yaml:"operation"`
	Result    refactor.Result `json:"result"    yaml:"result"`
	// Skipped is set for operations after a failed one.
	Skipped bool `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// FileResult is the combined outcome of every operation on one file.
type FileResult struct {
	File     string       `json:"file"            yaml:"file"`
	Original []byte       `json:"-"               yaml:"-"`
	Code     string       `json:"code,omitempty"  yaml:"code,omitempty"`
	Error    string       `json:"error,omitempty" yaml:"error,omitempty"`
	Steps    []StepResult `json:"steps"           yaml:"steps"`
	Changes  int          `json:"changes"         yaml:"changes"`
	Success  bool         `json:"success"         yaml:"success"`
}

// Runner applies plans with an engine.
type Runner struct {
	engine  *refactor.Engine
	workers int
}

// NewRunner creates a runner. workers <= 0 uses one worker per CPU.
func NewRunner(engine *refactor.Engine, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Runner{engine: engine, workers: workers}
}

// Apply runs the plan. Operations are grouped by file in first-appearance
// order; each file is read once and its operations run in plan order on the
// output of the previous one. Files are processed concurrently. A failed
// operation fails its file and skips the rest of that file's operations.
// Nothing is written to disk.
func (r *Runner) Apply(ctx context.Context, p *Plan) ([]FileResult, error) {
	files, groups := groupByFile(p.Operations)
	results := make([]FileResult, len(files))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)

	for idx, file := range files {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			results[idx] = r.applyFile(ctx, file, groups[file])

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return results, fmt.Errorf("apply plan: %w", err)
	}

	return results, nil
}

func (r *Runner) applyFile(ctx context.Context, file string, ops []Operation) FileResult {
	out := FileResult{File: file, Steps: make([]StepResult, 0, len(ops))}

	source, resolved, err := refactor.ReadSource(file)
	if err != nil {
		out.Error = err.Error()

		for _, op := range ops {
			out.Steps = append(out.Steps, StepResult{Operation: op, Skipped: true})
		}

		return out
	}

	out.File = resolved
	out.Original = source
	current := source
	failed := false

	for _, op := range ops {
		if failed {
			out.Steps = append(out.Steps, StepResult{Operation: op, Skipped: true})

			continue
		}

		result := r.run(ctx, resolved, current, op)
		out.Steps = append(out.Steps, StepResult{Operation: op, Result: result})

		if !result.Success {
			failed = true
			out.Error = result.Error

			continue
		}

		out.Changes += result.Changes
		current = []byte(result.Code)
	}

	out.Success = !failed
	if out.Success {
		out.Code = string(current)
	}

	return out
}

func (r *Runner) run(ctx context.Context, file string, source []byte, op Operation) refactor.Result {
	switch op.Op {
	case refactor.OpRenameVariable:
		return r.engine.RenameVariable(ctx, refactor.RenameRequest{
			File: file, Source: source, Line: op.Line, OldName: op.OldName, NewName: op.NewName,
		})
	case refactor.OpExtractVariable:
		rng, err := refactor.ParseRange(op.Range)
		if err != nil {
			return refactor.Failure(file, op.Op, err)
		}

		return r.engine.ExtractVariable(ctx, refactor.ExtractVariableRequest{
			File: file, Source: source, Range: rng, Name: op.Name,
		})
	case refactor.OpExtractMethod:
		return r.engine.ExtractMethod(ctx, refactor.ExtractMethodRequest{
			File: file, Source: source, StartLine: op.StartLine, EndLine: op.EndLine, Name: op.Name,
		})
	default:
		return refactor.Failure(file, op.Op, fmt.Errorf("%w: %q", ErrUnknownOperation, op.Op))
	}
}

// groupByFile keys operations by resolved path, so spellings of one file such
// as src/a.php and ./src/a.php share a group and chain their edits. A path
// that does not resolve keeps its raw spelling and fails when it is read.
func groupByFile(ops []Operation) ([]string, map[string][]Operation) {
	var files []string

	groups := make(map[string][]Operation)

	for _, op := range ops {
		key := op.File
		if resolved, err := refactor.ResolvePath(op.File); err == nil {
			key = resolved
		}

		if _, seen := groups[key]; !seen {
			files = append(files, key)
		}

		groups[key] = append(groups[key], op)
	}

	return files, groups
}
