package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/drumato/fsshim/config"
	"github.com/drumato/fsshim/filesystem"
	kyaml "sigs.k8s.io/yaml"
)

type OpKind string

const (
	OpMkdir   OpKind = "mkdir"
	OpRm      OpKind = "rm"
	OpCp      OpKind = "cp"
	OpMv      OpKind = "mv"
	OpCopyDir OpKind = "copydir"
	OpLs      OpKind = "ls"
)

// Plan is an ordered batch of filesystem operations.
type Plan struct {
	Operations []Operation `json:"operations"`
}

type Operation struct {
	Op        OpKind `json:"op"`
	Path      string `json:"path,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Recursive bool   `json:"recursive,omitempty"`
	// Mode overrides the directory permission for mkdir, in octal.
	Mode string `json:"mode,omitempty"`
}

// Result holds the listing produced by an ls operation.
type Result struct {
	Index   int      `json:"index"`
	Path    string   `json:"path"`
	Entries []string `json:"entries"`
}

// ParsePlan decodes a YAML or JSON plan and validates every operation.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := kyaml.UnmarshalStrict(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	for i, op := range plan.Operations {
		if err := op.Validate(); err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return &plan, nil
}

func (o Operation) Validate() error {
	switch o.Op {
	case OpLs:
	case OpMkdir, OpRm:
		if o.Path == "" {
			return fmt.Errorf("%s requires path", o.Op)
		}
	case OpCp, OpMv, OpCopyDir:
		if o.From == "" || o.To == "" {
			return fmt.Errorf("%s requires from and to", o.Op)
		}
	default:
		return fmt.Errorf("unknown op %q", o.Op)
	}
	if o.Mode != "" {
		if _, err := config.ParsePermission(o.Mode); err != nil {
			return err
		}
	}
	return nil
}

type Runner struct {
	logger  *slog.Logger
	fs      filesystem.FileSystem
	dirPerm os.FileMode
}

type RunnerOption func(*Runner)

func New(logger *slog.Logger, opts ...RunnerOption) *Runner {
	r := Runner{
		logger:  logger,
		fs:      filesystem.NewDefaultFileSystem(filesystem.WithLogger(logger)),
		dirPerm: 0o755,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return &r
}

func WithFileSystem(fs filesystem.FileSystem) RunnerOption {
	return func(r *Runner) {
		r.fs = fs
	}
}

func WithDirPermission(perm os.FileMode) RunnerOption {
	return func(r *Runner) {
		r.dirPerm = perm
	}
}

// Run applies the operations in order and stops at the first failure.
// Nothing already applied is undone.
func (r *Runner) Run(ctx context.Context, plan Plan) ([]Result, error) {
	r.logger.InfoContext(ctx, "Runner started", slog.Int("operations", len(plan.Operations)))

	var results []Result
	for i, op := range plan.Operations {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r.logger.DebugContext(ctx, "Applying operation", slog.Int("index", i), slog.String("op", string(op.Op)))

		entries, err := r.apply(ctx, op)
		if err != nil {
			return results, fmt.Errorf("operation %d (%s): %w", i, op.Op, err)
		}
		if op.Op == OpLs {
			results = append(results, Result{Index: i, Path: op.Path, Entries: entries})
		}
	}
	return results, nil
}

func (r *Runner) apply(ctx context.Context, op Operation) ([]string, error) {
	switch op.Op {
	case OpMkdir:
		perm := r.dirPerm
		if op.Mode != "" {
			p, err := config.ParsePermission(op.Mode)
			if err != nil {
				return nil, err
			}
			perm = p.FileMode()
		}
		return nil, r.fs.Mkdir(ctx, op.Path, perm, op.Recursive)
	case OpRm:
		return nil, r.fs.Rm(ctx, op.Path, op.Recursive)
	case OpCp:
		return nil, r.fs.Cp(op.From, op.To)
	case OpMv:
		return nil, r.fs.Mv(op.From, op.To)
	case OpCopyDir:
		return nil, r.fs.CopyDirectory(op.From, op.To)
	case OpLs:
		return r.fs.Ls(op.Path)
	default:
		return nil, fmt.Errorf("unknown op %q", op.Op)
	}
}
