// Package schedule runs recurring jobs such as the discount reconciler.
//
// Usage:
//
//	s := schedule.New()
//	s.Cron("*/15 * * * *").Name("reconcile").WithoutOverlapping().Run(reconcile)
//	s.Every(30).Seconds().Name("cache-warm").Run(warm)
//	s.Start(ctx) // blocks until ctx is cancelled
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/minimalshop/pkg/logger"
)

// Task is a scheduled job. ctx is cancelled when the scheduler stops.
type Task func(ctx context.Context)

type entry struct {
	id        string
	interval  time.Duration
	cronExpr  string
	cron      *cronSpec
	task      Task
	noOverlap bool

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

// Scheduler holds registered entries and dispatches them once a second.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	wg      sync.WaitGroup
	tick    time.Duration
}

// New returns an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{tick: time.Second}
}

// Builder configures one entry before Run registers it.
type Builder struct {
	s   *Scheduler
	e   *entry
	err error
}

// Every starts an interval entry of n units.
func (s *Scheduler) Every(n int) *Frequency { return &Frequency{s: s, n: n} }

// EveryMinute is Every(1).Minutes().
func (s *Scheduler) EveryMinute() *Builder { return s.Every(1).Minutes() }

// Hourly is Every(1).Hours().
func (s *Scheduler) Hourly() *Builder { return s.Every(1).Hours() }

// Cron starts an entry driven by a 5-field expression
// (minute hour day-of-month month day-of-week). Each field accepts *, n,
// a-b, */step, a-b/step and comma-separated lists of those.
func (s *Scheduler) Cron(expr string) *Builder {
	spec, err := parseCron(expr)
	return &Builder{s: s, e: &entry{cronExpr: expr, cron: spec}, err: err}
}

// Frequency is the unit step of Every.
type Frequency struct {
	s *Scheduler
	n int
}

func (f *Frequency) build(unit time.Duration) *Builder {
	b := &Builder{s: f.s, e: &entry{interval: time.Duration(f.n) * unit}}
	if f.n <= 0 {
		b.err = fmt.Errorf("schedule: interval must be positive, got %d", f.n)
	}
	return b
}

func (f *Frequency) Seconds() *Builder { return f.build(time.Second) }
func (f *Frequency) Minutes() *Builder { return f.build(time.Minute) }
func (f *Frequency) Hours() *Builder   { return f.build(time.Hour) }

// WithoutOverlapping skips a run while the previous one is still executing.
func (b *Builder) WithoutOverlapping() *Builder {
	b.e.noOverlap = true
	return b
}

// Name sets the id used in logs and listings.
func (b *Builder) Name(id string) *Builder {
	b.e.id = id
	return b
}

// Run registers task. It fails on an invalid expression or interval.
func (b *Builder) Run(task Task) error {
	if b.err != nil {
		return b.err
	}
	b.e.task = task

	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.e.id == "" {
		b.e.id = fmt.Sprintf("task-%d", len(b.s.entries)+1)
	}
	b.s.entries = append(b.s.entries, b.e)
	return nil
}

// ─── Loop ─────────────────────────────────────────────────────────────────────

// Start dispatches due entries until ctx is cancelled, then waits for
// running tasks to return.
func (s *Scheduler) Start(ctx context.Context) {
	logger.Info("schedule: started", "entries", len(s.List()))

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			logger.Info("schedule: stopped")
			return
		case now := <-ticker.C:
			s.dispatchDue(ctx, now)
		}
	}
}

func (s *Scheduler) dispatchDue(ctx context.Context, now time.Time) {
	s.mu.Lock()
	current := append([]*entry(nil), s.entries...)
	s.mu.Unlock()

	for _, e := range current {
		if e.due(now) {
			s.dispatch(ctx, e, now)
		}
	}
}

// due reports whether e should fire at now. Cron entries fire at most once
// per matching minute.
func (e *entry) due(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cron != nil {
		minute := now.Truncate(time.Minute)
		return e.cron.match(now) && e.lastRun.Before(minute)
	}
	return e.lastRun.IsZero() || now.Sub(e.lastRun) >= e.interval
}

// dispatch starts e in its own goroutine. It reports whether the task was
// started.
func (s *Scheduler) dispatch(ctx context.Context, e *entry, now time.Time) bool {
	e.mu.Lock()
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: skipping overlapping run", "id", e.id)
		return false
	}
	e.running = true
	e.lastRun = now
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "id", e.id, "panic", r)
			}
		}()

		logger.Debug("schedule: running", "id", e.id)
		e.task(ctx)
	}()
	return true
}

// List describes the registered entries for the CLI.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		freq := e.cronExpr
		if freq == "" {
			freq = "every " + e.interval.String()
		}
		out = append(out, fmt.Sprintf("%s  [%s]", e.id, freq))
	}
	return out
}

// ─── Cron expressions ─────────────────────────────────────────────────────────

type cronSpec struct {
	fields [5]map[int]bool
}

var cronBounds = [5][2]int{{0, 59}, {0, 23}, {1, 31}, {1, 12}, {0, 6}}

func parseCron(expr string) (*cronSpec, error) {
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return nil, fmt.Errorf("schedule: cron %q: want 5 fields, got %d", expr, len(parts))
	}

	spec := &cronSpec{}
	for i, part := range parts {
		set, err := parseField(part, cronBounds[i][0], cronBounds[i][1])
		if err != nil {
			return nil, fmt.Errorf("schedule: cron %q: %w", expr, err)
		}
		spec.fields[i] = set
	}
	return spec, nil
}

func parseField(field string, lo, hi int) (map[int]bool, error) {
	set := map[int]bool{}
	for _, item := range strings.Split(field, ",") {
		rng, stepStr, hasStep := strings.Cut(item, "/")
		step := 1
		if hasStep {
			n, err := strconv.Atoi(stepStr)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("bad step %q", item)
			}
			step = n
		}

		from, to := lo, hi
		switch {
		case rng == "*":
		case strings.Contains(rng, "-"):
			a, b, _ := strings.Cut(rng, "-")
			var errA, errB error
			from, errA = strconv.Atoi(a)
			to, errB = strconv.Atoi(b)
			if errA != nil || errB != nil {
				return nil, fmt.Errorf("bad range %q", item)
			}
		default:
			n, err := strconv.Atoi(rng)
			if err != nil {
				return nil, fmt.Errorf("bad value %q", item)
			}
			from, to = n, n
			if hasStep {
				to = hi
			}
		}
		if from < lo || to > hi || from > to {
			return nil, fmt.Errorf("%q out of range %d-%d", item, lo, hi)
		}
		for v := from; v <= to; v += step {
			set[v] = true
		}
	}
	return set, nil
}

func (c *cronSpec) match(t time.Time) bool {
	values := [5]int{t.Minute(), t.Hour(), t.Day(), int(t.Month()), int(t.Weekday())}
	for i, v := range values {
		if !c.fields[i][v] {
			return false
		}
	}
	return true
}
