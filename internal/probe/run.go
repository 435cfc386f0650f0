package probe

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"latebind/internal/binder"
	"latebind/internal/diag"
	"latebind/internal/trace"
)

// Result is the outcome of one probe.
type Result struct {
	Index   int
	Probe   Probe
	Member  string
	Mode    string
	Steps   []string
	Invoked bool
	Value   any
	Err     error
	Elapsed time.Duration
}

// Passed reports whether the outcome matches the probe's expectations.
func (r Result) Passed() bool {
	return r.mismatch() == ""
}

func (r Result) mismatch() string {
	if r.Probe.Expect != "" {
		if r.Err == nil {
			return fmt.Sprintf("expected %s, got success", r.Probe.Expect)
		}
		if got := diag.CodeOf(r.Err).ID(); got != r.Probe.Expect {
			return fmt.Sprintf("expected %s, got %s", r.Probe.Expect, got)
		}
		return ""
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	if r.Probe.Want != nil {
		if !r.Invoked {
			return "want is set but nothing was invoked"
		}
		if got := fmt.Sprint(r.Value); got != *r.Probe.Want {
			return fmt.Sprintf("expected %q, got %q", *r.Probe.Want, got)
		}
	}
	return ""
}

// Diagnostic converts a failed result into a diagnostic.
func (r Result) Diagnostic() (diag.Diagnostic, bool) {
	msg := r.mismatch()
	if msg == "" {
		return diag.Diagnostic{}, false
	}
	if r.Probe.Expect == "" && r.Err != nil {
		return diag.FromError(r.Probe.Name(), r.Err), true
	}
	return diag.New(diag.SevError, diag.CodeOf(r.Err), r.Probe.Name(), msg), true
}

// Options tunes Run.
type Options struct {
	// Jobs bounds the number of concurrent probes; GOMAXPROCS when <= 0.
	Jobs int
	// OnResult is called once per finished probe, never concurrently.
	OnResult func(Result)
}

// Run resolves, and where requested invokes, every probe against e.
// Probe failures are reported in the results; the error is only set when
// ctx is cancelled.
func Run(ctx context.Context, e *binder.Engine, probes []Probe, opts Options) ([]Result, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(probes))
	if len(probes) == 0 {
		return results, nil
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(probes)))
	for i, p := range probes {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// each goroutine writes only its own slot
			results[i] = runOne(ctx, e, i, p)
			if opts.OnResult != nil {
				mu.Lock()
				opts.OnResult(results[i])
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func runOne(ctx context.Context, e *binder.Engine, i int, p Probe) (r Result) {
	r = Result{Index: i, Probe: p}
	span := trace.Begin(e.Tracer(), trace.ScopeDriver, "probe", trace.ParentFrom(ctx)).WithExtra("probe", p.Name())
	start := time.Now()
	defer func() {
		r.Elapsed = time.Since(start)
		detail := "ok"
		if r.Err != nil {
			detail = diag.CodeOf(r.Err).ID()
		}
		span.End(detail)
	}()

	in := e.Types()
	t, shape, flags, err := p.request(in)
	if err != nil {
		r.Err = err
		return r
	}
	th, err := e.Resolve(binder.OfType(t), p.Member, shape, flags)
	if err != nil {
		r.Err = err
		return r
	}
	plan := th.Plan()
	r.Member = plan.String()
	r.Mode = plan.Binding().Mode.String()
	r.Steps = plan.Steps()
	if p.Invoke == nil {
		return r
	}
	r.Invoked = true
	r.Value, r.Err = th.Invoke(p.Invoke...)
	return r
}

// Report collects the diagnostics of failed results, sorted.
func Report(results []Result, max int) *diag.Bag {
	bag := diag.NewBag(max)
	for _, r := range results {
		if d, ok := r.Diagnostic(); ok {
			bag.Add(d)
		}
	}
	bag.Sort()
	return bag
}
