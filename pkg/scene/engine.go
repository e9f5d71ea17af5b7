package scene

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chazu/collide/internal/logging"
	"github.com/chazu/collide/pkg/partition"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code, or a compound that
// violates its construction rules.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Options control evaluation.
type Options struct {
	// Timeout is the hard limit for one evaluation. Zero means DefaultTimeout.
	Timeout time.Duration

	// Index is the spatial index layout used for every compound.
	Index partition.Options
}

// DefaultOptions returns the options used by NewEngine.
func DefaultOptions() Options {
	return Options{Timeout: DefaultTimeout, Index: partition.DefaultOptions()}
}

// Engine wraps the zygomys interpreter for scene evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	gens generations
	opts Options
}

// NewEngine creates a new Engine with default options.
func NewEngine() *Engine {
	return NewEngineWithOptions(DefaultOptions())
}

// NewEngineWithOptions creates a new Engine.
func NewEngineWithOptions(opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Engine{opts: opts}
}

// Evaluate takes Lisp source code and produces a new Scene.
//
// Return semantics:
//   - On success: returns scene + nil errors + nil error
//   - On parse/eval failure: returns nil scene + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Scene, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext is Evaluate that also gives up when ctx is done.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*Scene, []EvalError, error) {
	gen := e.gens.next()
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		start := time.Now()
		sc, evalErrs, err := e.evaluate(source)
		logging.Debug("scene: evaluated", "generation", gen, "errors", len(evalErrs), "elapsed", time.Since(start))
		ch <- evalResult{scene: sc, errors: evalErrs, err: err}
	}()

	res, err := e.gens.await(ctx, ch, gen, e.opts.Timeout)
	if err != nil {
		logging.Warn("scene: evaluation abandoned", "generation", gen, "err", err)
		return nil, nil, err
	}
	return res.scene, res.errors, res.err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Scene, []EvalError, error) {
	// Empty source is a valid program that produces an empty scene.
	if strings.TrimSpace(source) == "" {
		return New(), nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	sc := New()
	registerBuiltins(env, sc, e.opts.Index)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	return sc, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?is)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?is)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
