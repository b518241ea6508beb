package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/minimalshop/app/models"
	"github.com/shashiranjanraj/minimalshop/app/repositories"
	"github.com/shashiranjanraj/minimalshop/pkg/event"
	"github.com/shashiranjanraj/minimalshop/pkg/logger"
	"github.com/shashiranjanraj/minimalshop/pkg/metrics"
	"github.com/shashiranjanraj/minimalshop/pkg/storage"
)

// EventDiscountsReconciled fires after a run wrote at least one discount.
// The payload is the run's Report.
const EventDiscountsReconciled = "discounts.reconciled"

// TargetChange is one discount whose targets differ, as sets, from what is
// stored.
type TargetChange struct {
	DiscountID       string   `json:"discountId"`
	Before           []string `json:"before"`
	After            []string `json:"after"`
	InferredLegacy   int      `json:"inferredLegacy"`
	InferredCategory int      `json:"inferredCategory"`
	Dropped          int      `json:"dropped"`
}

// Plan is the pure result of reconciling a catalog snapshot with the
// discount list. Applying it is a separate step.
type Plan struct {
	Examined         int            `json:"examined"`
	InferredLegacy   int            `json:"inferredLegacy"`
	InferredCategory int            `json:"inferredCategory"`
	Changes          []TargetChange `json:"changes"`
}

// catalogIndex resolves any product key to its canonical id.
type catalogIndex struct {
	idByKey       map[string]string
	idsByCategory map[string][]string
	known         TargetSet
}

// newCatalogIndex indexes id, slug and SKU. A key shared by two products
// resolves to the later one.
func newCatalogIndex(refs []models.ProductRef) catalogIndex {
	idx := catalogIndex{
		idByKey:       make(map[string]string, len(refs)*3),
		idsByCategory: map[string][]string{},
		known:         make(TargetSet, len(refs)),
	}
	for _, r := range refs {
		if r.ID == "" {
			continue
		}
		idx.known.Add(r.ID)
		for _, key := range []string{r.ID, r.Slug, r.SKU} {
			if key != "" {
				idx.idByKey[key] = r.ID
			}
		}
		if r.Category != "" {
			idx.idsByCategory[r.Category] = append(idx.idsByCategory[r.Category], r.ID)
		}
	}
	return idx
}

// PlanReconciliation computes, for every discount, the target set it should
// have against catalog:
//
//  1. raw entries that are known canonical ids are kept;
//  2. every other entry is looked up as id, slug or SKU, as stored and
//     then trimmed, and replaced by the product's id or dropped when
//     nothing matches;
//  3. a category-scoped discount gains every product in its category.
//
// An ObjectID-shaped entry that is a product's slug or SKU resolves like
// any other key; one that matches nothing is dropped. Only
// discounts whose targets change as a set appear in Changes, so planning
// against an already reconciled list yields none.
func PlanReconciliation(catalog []models.ProductRef, discounts []models.Discount) Plan {
	idx := newCatalogIndex(catalog)
	plan := Plan{Examined: len(discounts)}

	for _, d := range discounts {
		before := NewTargetSet(d.ProductIDs...)
		after, legacy, category := idx.reconcile(d)
		if after.Equal(before) {
			continue
		}

		dropped := 0
		for id := range before {
			if !after.Has(id) {
				dropped++
			}
		}

		plan.InferredLegacy += legacy
		plan.InferredCategory += category
		plan.Changes = append(plan.Changes, TargetChange{
			DiscountID:       d.ID,
			Before:           append([]string{}, d.ProductIDs...),
			After:            after.Sorted(),
			InferredLegacy:   legacy,
			InferredCategory: category,
			Dropped:          dropped,
		})
	}
	return plan
}

// reconcile returns d's new targets plus how many ids legacy resolution and
// category expansion added that were not already stored as canonical ids.
func (idx catalogIndex) reconcile(d models.Discount) (TargetSet, int, int) {
	targets := make(TargetSet, len(d.ProductIDs))
	var legacyKeys []string

	for _, raw := range d.ProductIDs {
		if idx.known.Has(raw) {
			targets.Add(raw)
			continue
		}
		legacyKeys = append(legacyKeys, raw)
	}

	legacy := 0
	for _, raw := range legacyKeys {
		id, ok := idx.lookup(raw)
		if ok && targets.Add(id) {
			legacy++
		}
	}

	category := 0
	if d.Category != "" {
		for _, id := range idx.idsByCategory[d.Category] {
			if targets.Add(id) {
				category++
			}
		}
	}
	return targets, legacy, category
}

// lookup resolves raw as stored first, then with its surrounding noise
// trimmed.
func (idx catalogIndex) lookup(raw string) (string, bool) {
	if id, ok := idx.idByKey[raw]; ok {
		return id, true
	}
	if key := normalizeLegacyKey(raw); key != raw {
		id, ok := idx.idByKey[key]
		return id, ok
	}
	return "", false
}

// normalizeLegacyKey trims the whitespace, brackets and quotes that
// hand-edited target lists leave around a key, as in " ['mango-lassi'] ".
func normalizeLegacyKey(raw string) string {
	return strings.Trim(raw, " \t\r\n[]'\"")
}

// Failure is a discount whose targets could not be written.
type Failure struct {
	DiscountID string `json:"discountId"`
	Error      string `json:"error"`
}

// Report summarises a reconciler run.
type Report struct {
	RunID            string         `json:"runId"`
	StartedAt        time.Time      `json:"startedAt"`
	Duration         time.Duration  `json:"duration"`
	DryRun           bool           `json:"dryRun"`
	Examined         int            `json:"examined"`
	Updated          int            `json:"updated"`
	InferredLegacy   int            `json:"inferredLegacy"`
	InferredCategory int            `json:"inferredCategory"`
	Failures         []Failure      `json:"failures,omitempty"`
	Changes          []TargetChange `json:"changes,omitempty"`
}

// Status is the outcome label used for metrics and logs.
func (r Report) Status() string {
	switch {
	case r.DryRun:
		return "dry_run"
	case len(r.Failures) == 0:
		return "ok"
	case r.Updated == 0:
		return "failed"
	default:
		return "partial"
	}
}

// Reconciler loads a catalog snapshot and the discount list, plans the
// target rewrite and applies it one discount at a time. It assumes it is
// the only writer of discount targets while it runs.
type Reconciler struct {
	Catalog   repositories.CatalogStore
	Discounts repositories.DiscountStore

	// DryRun plans without writing.
	DryRun bool
	// ReportDisk, when set, receives the JSON report under ReportDir.
	ReportDisk storage.Disk
	ReportDir  string

	now func() time.Time
}

// NewReconciler wires a Reconciler to its stores.
func NewReconciler(catalog repositories.CatalogStore, discounts repositories.DiscountStore) *Reconciler {
	return &Reconciler{Catalog: catalog, Discounts: discounts, ReportDir: "reconcile", now: time.Now}
}

// Run reconciles every discount. It fails only when the snapshot cannot be
// loaded; per-discount write errors are returned in Report.Failures and a
// later run picks those discounts up again.
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	report := Report{RunID: uuid.NewString(), StartedAt: now(), DryRun: r.DryRun}
	log := logger.WithCtx(ctx).With("run_id", report.RunID)

	refs, err := r.Catalog.Refs(ctx)
	if err != nil {
		return report, fmt.Errorf("reconcile: load catalog: %w", err)
	}
	discounts, err := r.Discounts.List(ctx)
	if err != nil {
		return report, fmt.Errorf("reconcile: load discounts: %w", err)
	}

	plan := PlanReconciliation(refs, discounts)
	report.Examined = plan.Examined
	report.InferredLegacy = plan.InferredLegacy
	report.InferredCategory = plan.InferredCategory
	report.Changes = plan.Changes

	if !r.DryRun {
		report.Updated, report.Failures = r.Apply(ctx, plan)
	}
	report.Duration = now().Sub(report.StartedAt)

	metrics.RecordReconcile(report.Status(), report.InferredLegacy, report.InferredCategory,
		report.Updated, len(report.Failures), report.Duration)
	log.Info("reconcile finished",
		"status", report.Status(),
		"examined", report.Examined,
		"changes", len(plan.Changes),
		"updated", report.Updated,
		"inferred_legacy", report.InferredLegacy,
		"inferred_category", report.InferredCategory,
		"failures", len(report.Failures),
	)

	if report.Updated > 0 {
		event.Fire(ctx, EventDiscountsReconciled, report)
	}
	if r.ReportDisk != nil {
		if err := r.storeReport(ctx, report); err != nil {
			log.Warn("reconcile report not stored", "error", err)
		}
	}
	return report, nil
}

// Apply writes each planned change. Writes are independent: a failure is
// logged and collected and the rest continue. Cancelling ctx marks the
// remaining changes as failed.
func (r *Reconciler) Apply(ctx context.Context, plan Plan) (int, []Failure) {
	updated := 0
	var failures []Failure

	for _, c := range plan.Changes {
		if err := ctx.Err(); err != nil {
			failures = append(failures, Failure{DiscountID: c.DiscountID, Error: err.Error()})
			continue
		}
		if err := r.Discounts.UpdateTargets(ctx, c.DiscountID, c.After); err != nil {
			logger.WithCtx(ctx).Error("discount targets not written",
				"discount_id", c.DiscountID, "error", err)
			failures = append(failures, Failure{DiscountID: c.DiscountID, Error: err.Error()})
			continue
		}
		updated++
	}
	return updated, failures
}

func (r *Reconciler) storeReport(ctx context.Context, report Report) error {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	dir := r.ReportDir
	if dir == "" {
		dir = "reconcile"
	}
	if err := r.ReportDisk.Put(ctx, path.Join(dir, report.RunID+".json"), body); err != nil {
		return err
	}
	return r.ReportDisk.Put(ctx, path.Join(dir, "latest.json"), body)
}
