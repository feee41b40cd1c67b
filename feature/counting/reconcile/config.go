package reconcile

// Config carries the per-run reconciliation settings. It is built once at
// the process boundary (session fields plus configured defaults) and passed
// explicitly; the engine never consults global state mid-run.
type Config struct {
	// CategoryFilter, when non-empty, restricts the virtual snapshot to
	// items of that category. Physical items are never category-filtered.
	CategoryFilter string
	// QtyCalcMode selects how the virtual quantity is derived
	// (models.CalcQOH and friends).
	QtyCalcMode string
}
