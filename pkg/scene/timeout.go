package scene

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultTimeout is the hard limit for a single evaluation.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine timeout.
	ErrTimeout = errors.New("scene: evaluation timed out")

	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one had started on the same engine.
	ErrSuperseded = errors.New("scene: evaluation superseded by newer request")
)

type evalResult struct {
	scene  *Scene
	errors []EvalError
	err    error
}

// generations numbers the evaluations of one engine. Only the newest
// number is current; results carrying an older one are dropped.
type generations struct {
	mu      sync.Mutex
	current uint64
}

func (g *generations) next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current++
	return g.current
}

func (g *generations) isCurrent(gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return gen == g.current
}

// await blocks until evaluation gen reports on ch, ctx is done, or timeout
// elapses. A script that overruns keeps its goroutine until it returns,
// and its late result is never read.
func (g *generations) await(ctx context.Context, ch <-chan evalResult, gen uint64, timeout time.Duration) (evalResult, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !g.isCurrent(gen) {
			return evalResult{}, ErrSuperseded
		}
		return res, nil
	case <-timer.C:
		return evalResult{}, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	case <-ctx.Done():
		return evalResult{}, ctx.Err()
	}
}
