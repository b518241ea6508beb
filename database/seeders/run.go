// Package seeders imports catalog data into the stores.
//
// Seeders register themselves from init():
//
//	func init() {
//	    seeders.Register("catalog", SeedCatalog)
//	}
//
// and run with: shop seed
package seeders

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/shashiranjanraj/minimalshop/app/repositories"
	"github.com/shashiranjanraj/minimalshop/pkg/storage"
)

// Env is what a seeder reads from and writes to.
type Env struct {
	Catalog   repositories.CatalogStore
	Discounts repositories.DiscountStore
	// Source holds the seed files under Dir.
	Source storage.Disk
	Dir    string
	// Out receives the human-readable summary.
	Out io.Writer
}

// SeederFunc is the signature for a seed function.
type SeederFunc func(ctx context.Context, env Env) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Register adds a seeder to the global registry.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// Names lists registered seeders in run order.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out
}

// RunAll executes every registered seeder in registration order, or only
// those named in only. It stops on the first error.
func RunAll(ctx context.Context, env Env, only ...string) error {
	mu.Lock()
	current := make([]seederEntry, len(entries))
	copy(current, entries)
	mu.Unlock()

	if env.Out == nil {
		env.Out = io.Discard
	}

	want := map[string]bool{}
	for _, name := range only {
		want[name] = true
	}

	ran := 0
	for _, e := range current {
		if len(want) > 0 && !want[e.name] {
			continue
		}
		fmt.Fprintf(env.Out, "• Running seeder: %s\n", e.name)
		if err := e.fn(ctx, env); err != nil {
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		ran++
	}
	if ran == 0 {
		fmt.Fprintln(env.Out, "  (no seeders ran)")
	}
	return nil
}
