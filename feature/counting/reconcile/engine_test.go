package reconcile

import (
	"testing"

	"inventory-counter/feature/counting/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func session(physical []models.PhysicalItem, virtual []models.VirtualItem) *models.CountSession {
	return &models.CountSession{
		ID:            "CNT-001",
		PhysicalItems: physical,
		VirtualItems:  virtual,
	}
}

func TestRun_NilSession(t *testing.T) {
	_, _, err := Run(nil, Config{})
	assert.Error(t, err)
}

func TestRun_MatchingQuantitiesProduceNoRows(t *testing.T) {
	s := session(
		[]models.PhysicalItem{{Code: "X1", Qty: 5}},
		[]models.VirtualItem{{ItemID: "X1", QtyOnHand: 5}},
	)

	diffs, serials, err := Run(s, Config{})
	require.NoError(t, err)
	assert.Empty(t, diffs)
	assert.Empty(t, serials)
}

func TestRun_MissingInVirtual(t *testing.T) {
	s := session(
		[]models.PhysicalItem{{Code: "X1", Qty: 5, Description: "scanned thing"}},
		nil,
	)

	diffs, _, err := Run(s, Config{})
	require.NoError(t, err)
	require.Len(t, diffs, 1)

	d := diffs[0]
	assert.Equal(t, "X1", d.ItemCode)
	assert.Equal(t, 5, d.PhysicalQty)
	assert.Equal(t, 0, d.VirtualQty)
	assert.Equal(t, 5, d.DifferenceQty)
	assert.Equal(t, models.ReasonMissingInVirtual, d.Reason)
	assert.Equal(t, "scanned thing", d.Description)
	assert.False(t, d.Confirmed)
}

func TestRun_MissingInPhysical(t *testing.T) {
	s := session(
		nil,
		[]models.VirtualItem{{ItemID: "X2", QtyOnHand: 3, ShortDescription: "widget", Bin: "B-07", RecID: "rec-42"}},
	)

	diffs, _, err := Run(s, Config{})
	require.NoError(t, err)
	require.Len(t, diffs, 1)

	d := diffs[0]
	assert.Equal(t, "X2", d.ItemCode)
	assert.Equal(t, 0, d.PhysicalQty)
	assert.Equal(t, 3, d.VirtualQty)
	assert.Equal(t, -3, d.DifferenceQty)
	assert.Equal(t, models.ReasonMissingInPhysical, d.Reason)
	assert.Equal(t, "widget", d.Description)
	assert.Equal(t, "B-07", d.Bin)
	assert.Equal(t, "rec-42", d.RecID)
}

func TestRun_QuantityMismatch(t *testing.T) {
	s := session(
		[]models.PhysicalItem{{Code: "X1", Qty: 7}},
		[]models.VirtualItem{{ItemID: "X1", QtyOnHand: 4}},
	)

	diffs, _, err := Run(s, Config{})
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, models.ReasonQuantityMismatch, diffs[0].Reason)
	assert.Equal(t, 3, diffs[0].DifferenceQty)
}

func TestRun_SignConvention(t *testing.T) {
	s := session(
		[]models.PhysicalItem{{Code: "A", Qty: 2}, {Code: "B", Qty: 9}},
		[]models.VirtualItem{
			{ItemID: "A", QtyOnHand: 5},
			{ItemID: "B", QtyOnHand: 1},
			{ItemID: "C", QtyOnHand: 4},
		},
	)

	diffs, _, err := Run(s, Config{})
	require.NoError(t, err)
	require.Len(t, diffs, 3)

	for _, d := range diffs {
		assert.Equal(t, d.PhysicalQty-d.VirtualQty, d.DifferenceQty, "code %s", d.ItemCode)
		assert.NotZero(t, d.DifferenceQty)
		if d.Reason == models.ReasonMissingInPhysical {
			assert.Equal(t, 0, d.PhysicalQty)
			assert.Equal(t, -d.VirtualQty, d.DifferenceQty)
		}
	}
}

func TestRun_Idempotent(t *testing.T) {
	s := session(
		[]models.PhysicalItem{{Code: "A", Qty: 2}, {Code: "B", Qty: 9}},
		[]models.VirtualItem{
			{ItemID: "A", QtyOnHand: 5, SerialList: "SN1,SN2"},
			{ItemID: "C", QtyOnHand: 4},
		},
	)

	first, firstSerials, err := Run(s, Config{})
	require.NoError(t, err)

	// Feed the first result back in, as a persisted run would.
	s.DifferenceItems = first
	s.SerialNumbers = firstSerials

	second, secondSerials, err := Run(s, Config{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstSerials, secondSerials)
}

func TestRun_ConfirmedSurvivesRerun(t *testing.T) {
	s := session(
		[]models.PhysicalItem{{Code: "X1", Qty: 7}},
		[]models.VirtualItem{{ItemID: "X1", QtyOnHand: 4}},
	)
	s.DifferenceItems = []models.DifferenceItem{
		{ItemCode: "X1", PhysicalQty: 7, VirtualQty: 4, DifferenceQty: 3,
			Reason: models.ReasonQuantityMismatch, Confirmed: true, Response: "success"},
	}

	diffs, _, err := Run(s, Config{})
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.True(t, diffs[0].Confirmed, "confirmed flag must survive the rebuild")
	assert.Equal(t, "success", diffs[0].Response, "push response must survive the rebuild")
}

func TestRun_ResolvedRowIsPruned(t *testing.T) {
	// The prior run recorded a discrepancy for X1; a recount fixed it.
	s := session(
		[]models.PhysicalItem{{Code: "X1", Qty: 4}},
		[]models.VirtualItem{{ItemID: "X1", QtyOnHand: 4}},
	)
	s.DifferenceItems = []models.DifferenceItem{
		{ItemCode: "X1", PhysicalQty: 7, VirtualQty: 4, DifferenceQty: 3,
			Reason: models.ReasonQuantityMismatch, Confirmed: true},
	}

	diffs, _, err := Run(s, Config{})
	require.NoError(t, err)
	assert.Empty(t, diffs)
}

func TestRun_StaleRowIsPruned(t *testing.T) {
	// The prior run has a row for a code that no longer exists anywhere.
	s := session(
		[]models.PhysicalItem{{Code: "A", Qty: 1}},
		nil,
	)
	s.DifferenceItems = []models.DifferenceItem{
		{ItemCode: "GONE", PhysicalQty: 2, VirtualQty: 0, DifferenceQty: 2},
	}

	diffs, _, err := Run(s, Config{})
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, "A", diffs[0].ItemCode)
}

func TestRun_CategoryFilterRestrictsVirtualOnly(t *testing.T) {
	s := session(
		[]models.PhysicalItem{
			{Code: "IN", Qty: 1},
			{Code: "OUT", Qty: 1},
		},
		[]models.VirtualItem{
			{ItemID: "IN", QtyOnHand: 5, Category: "tools"},
			{ItemID: "OUT", QtyOnHand: 5, Category: "parts"},
			{ItemID: "ONLY-VIRT", QtyOnHand: 2, Category: "parts"},
		},
	)

	diffs, _, err := Run(s, Config{CategoryFilter: "tools"})
	require.NoError(t, err)

	byCode := make(map[string]models.DifferenceItem)
	for _, d := range diffs {
		byCode[d.ItemCode] = d
	}

	// IN compares against its virtual row.
	assert.Equal(t, models.ReasonQuantityMismatch, byCode["IN"].Reason)
	assert.Equal(t, -4, byCode["IN"].DifferenceQty)

	// OUT's virtual row is filtered away, but the physical item still
	// participates and now reads as missing in virtual.
	assert.Equal(t, models.ReasonMissingInVirtual, byCode["OUT"].Reason)
	assert.Equal(t, 1, byCode["OUT"].DifferenceQty)

	// The filtered-out virtual-only item produces nothing.
	_, exists := byCode["ONLY-VIRT"]
	assert.False(t, exists)
}

func TestRun_QtyCalcMode(t *testing.T) {
	s := session(
		[]models.PhysicalItem{{Code: "X1", Qty: 10}},
		[]models.VirtualItem{{ItemID: "X1", QtyOnHand: 7, PickedNotShipped: 3}},
	)

	// With picked-not-shipped folded in, quantities match and no row appears.
	diffs, _, err := Run(s, Config{QtyCalcMode: models.CalcQOHPickedNotShipped})
	require.NoError(t, err)
	assert.Empty(t, diffs)

	// Plain QOH disagrees.
	diffs, _, err = Run(s, Config{QtyCalcMode: models.CalcQOH})
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, 3, diffs[0].DifferenceQty)
}

func TestRun_TrimsCodes(t *testing.T) {
	s := session(
		[]models.PhysicalItem{{Code: "  X1  ", Qty: 5}},
		[]models.VirtualItem{{ItemID: "X1 ", QtyOnHand: 5}},
	)

	diffs, _, err := Run(s, Config{})
	require.NoError(t, err)
	assert.Empty(t, diffs, "codes must be compared after trimming")
}

func TestRun_OutputSortedByCode(t *testing.T) {
	s := session(
		[]models.PhysicalItem{{Code: "C", Qty: 1}, {Code: "A", Qty: 1}, {Code: "B", Qty: 1}},
		nil,
	)

	diffs, _, err := Run(s, Config{})
	require.NoError(t, err)
	require.Len(t, diffs, 3)
	assert.Equal(t, "A", diffs[0].ItemCode)
	assert.Equal(t, "B", diffs[1].ItemCode)
	assert.Equal(t, "C", diffs[2].ItemCode)
}
