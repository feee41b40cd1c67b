package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"inventory-counter/feature/counting/models"
)

// Run recomputes the difference collection for a session.
//
// Pass A walks the physical items, Pass B the virtual-only items; both upsert
// difference rows keyed by item code, preserving the Confirmed flag and the
// last push Response from the prior collection. Rows not touched by either
// pass, and rows whose recomputed difference is zero, are pruned. The serial
// associator then rebuilds the serial collection from the surviving rows.
//
// The returned slices are sorted by item code so that re-running against
// unchanged inputs yields an identical collection. Row IDs are zeroed; the
// session store assigns fresh ones when the aggregate is saved.
func Run(session *models.CountSession, cfg Config) ([]models.DifferenceItem, []models.DifferenceSerial, error) {
	if session == nil {
		return nil, nil, fmt.Errorf("reconcile: nil session")
	}

	// The category filter restricts the virtual side only. Physical items
	// carry no category and always participate in full.
	filter := strings.TrimSpace(cfg.CategoryFilter)
	virtualByID := make(map[string]models.VirtualItem, len(session.VirtualItems))
	for _, v := range session.VirtualItems {
		if filter != "" && v.Category != filter {
			continue
		}
		id := strings.TrimSpace(v.ItemID)
		if id == "" {
			continue
		}
		virtualByID[id] = v
	}

	// Index maps, built once per run.
	virtualQty := make(map[string]int, len(virtualByID))
	for id, v := range virtualByID {
		virtualQty[id] = v.EffectiveQty(cfg.QtyCalcMode)
	}

	physicalQty := make(map[string]int, len(session.PhysicalItems))
	physicalDesc := make(map[string]string, len(session.PhysicalItems))
	for _, p := range session.PhysicalItems {
		code := strings.TrimSpace(p.Code)
		if code == "" {
			continue
		}
		// Codes colliding after trimming accumulate into one entry.
		physicalQty[code] += p.Qty
		if p.Description != "" {
			physicalDesc[code] = p.Description
		}
	}

	// Snapshot the prior rows before rebuilding: Confirmed and Response
	// must survive the rebuild for codes that persist.
	prior := make(map[string]models.DifferenceItem, len(session.DifferenceItems))
	for _, d := range session.DifferenceItems {
		prior[d.ItemCode] = d
	}

	var out []models.DifferenceItem
	upsert := func(code string, physQty, virtQty int, reason string) {
		diff := physQty - virtQty
		if diff == 0 {
			// A resolved discrepancy leaves no row behind.
			return
		}
		row := models.DifferenceItem{
			SessionID:     session.ID,
			ItemCode:      code,
			PhysicalQty:   physQty,
			VirtualQty:    virtQty,
			DifferenceQty: diff,
			Reason:        reason,
		}
		if v, ok := virtualByID[code]; ok {
			row.Description = v.ShortDescription
			row.Bin = v.Bin
			row.RecID = v.RecID
		} else {
			row.Description = physicalDesc[code]
		}
		if p, ok := prior[code]; ok {
			row.Confirmed = p.Confirmed
			row.Response = p.Response
		}
		out = append(out, row)
	}

	// Pass A: physical-driven.
	for code, physQty := range physicalQty {
		virtQty, inVirtual := virtualQty[code]
		reason := models.ReasonQuantityMismatch
		if !inVirtual {
			reason = models.ReasonMissingInVirtual
		}
		upsert(code, physQty, virtQty, reason)
	}

	// Pass B: virtual-only.
	for code, virtQty := range virtualQty {
		if _, counted := physicalQty[code]; counted {
			continue
		}
		upsert(code, 0, virtQty, models.ReasonMissingInPhysical)
	}

	// Pruning is implicit: out contains exactly the processed, non-zero
	// rows, so anything from the prior collection not re-upserted is gone.

	sort.Slice(out, func(i, j int) bool {
		return out[i].ItemCode < out[j].ItemCode
	})

	serials := associateSerials(session, virtualByID, out)

	return out, serials, nil
}
