package models

import (
	"strings"
	"time"
)

// Session lifecycle states.
const (
	StatusDraft      = "draft"
	StatusCounting   = "counting"
	StatusReconciled = "reconciled"
	StatusSubmitted  = "submitted"
)

// Difference reasons.
const (
	ReasonQuantityMismatch  = "quantity_mismatch"
	ReasonMissingInVirtual  = "missing_in_virtual"
	ReasonMissingInPhysical = "missing_in_physical"
)

// Serial disposition flags. ToDoRemoveAdd marks a serial mid remove/add
// workflow; rows carrying it are never dropped by a reconcile run.
const (
	ToDoNone      = "none"
	ToDoRemoveAdd = "remove_add"
)

// SerialListEmpty is the sentinel external systems emit for "no serials".
const SerialListEmpty = "0"

// Quantity calculation modes for the virtual side.
const (
	CalcQOH                  = "qoh"
	CalcQOHPickedNotShipped  = "qoh_picked_not_shipped"
	CalcQOHPickedNotInvoiced = "qoh_picked_not_invoiced"
	CalcQOHPickedBoth        = "qoh_picked_both"
)

// CountSession is the aggregate root: one physical count plus the virtual
// snapshot it is reconciled against. All child collections belong to exactly
// one session and are replaced wholesale on save.
type CountSession struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id"`
	Status         string    `gorm:"size:20;default:draft" json:"status"`
	CategoryFilter string    `gorm:"size:120" json:"category_filter"`
	QtyCalcMode    string    `gorm:"size:40;default:qoh" json:"qty_calc_mode"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	PhysicalItems   []PhysicalItem     `gorm:"foreignKey:SessionID;references:ID;constraint:OnDelete:CASCADE" json:"physical_items"`
	VirtualItems    []VirtualItem      `gorm:"foreignKey:SessionID;references:ID;constraint:OnDelete:CASCADE" json:"virtual_items"`
	DifferenceItems []DifferenceItem   `gorm:"foreignKey:SessionID;references:ID;constraint:OnDelete:CASCADE" json:"difference_items"`
	SerialNumbers   []DifferenceSerial `gorm:"foreignKey:SessionID;references:ID;constraint:OnDelete:CASCADE" json:"serial_numbers"`
}

// AllDifferencesConfirmed reports whether every difference row has been
// confirmed by a user. Submission is blocked until this holds.
func (s *CountSession) AllDifferencesConfirmed() bool {
	for _, d := range s.DifferenceItems {
		if !d.Confirmed {
			return false
		}
	}
	return true
}

// PhysicalItem is one counted SKU. Rows accumulate scans for the life of the
// session and are never implicitly deleted.
type PhysicalItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SessionID   string `gorm:"size:64;uniqueIndex:idx_physical_session_code" json:"session_id"`
	Code        string `gorm:"size:120;uniqueIndex:idx_physical_session_code" json:"code"`
	Qty         int    `json:"qty"`
	Description string `gorm:"size:255" json:"description"`
	ExpectedQty int    `json:"expected_qty"`
}

// VirtualItem is one SKU as known by the system of record at import time.
// The collection is replaced wholesale on each import and is immutable
// between imports.
type VirtualItem struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	SessionID         string `gorm:"size:64;index" json:"session_id"`
	ItemID            string `gorm:"size:120" json:"item_id"`
	QtyOnHand         int    `json:"qty_on_hand"`
	PickedNotShipped  int    `json:"picked_not_shipped"`
	PickedNotInvoiced int    `json:"picked_not_invoiced"`
	Category          string `gorm:"size:120" json:"category"`
	Bin               string `gorm:"size:120" json:"bin"`
	WarehouseRef      string `gorm:"size:120" json:"warehouse_ref"`
	ShortDescription  string `gorm:"size:255" json:"shortdescription"`
	RecID             string `gorm:"size:120" json:"recid"`
	SerialList        string `gorm:"size:2048" json:"serial_list"`
}

// EffectiveQty applies the configured calculation mode, folding in-flight
// picked quantities into quantity-on-hand. Unknown modes fall back to QOH.
func (v *VirtualItem) EffectiveQty(mode string) int {
	switch mode {
	case CalcQOHPickedNotShipped:
		return v.QtyOnHand + v.PickedNotShipped
	case CalcQOHPickedNotInvoiced:
		return v.QtyOnHand + v.PickedNotInvoiced
	case CalcQOHPickedBoth:
		return v.QtyOnHand + v.PickedNotShipped + v.PickedNotInvoiced
	default:
		return v.QtyOnHand
	}
}

// Serials splits the comma-separated serial list into clean tokens.
// The "0" sentinel and blank entries yield nothing.
func (v *VirtualItem) Serials() []string {
	raw := strings.TrimSpace(v.SerialList)
	if raw == "" || raw == SerialListEmpty {
		return nil
	}
	var out []string
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// DifferenceItem is one SKU whose physical and virtual quantities disagree.
// Confirmed and Response survive re-runs; every other field is recomputed.
type DifferenceItem struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	SessionID     string `gorm:"size:64;uniqueIndex:idx_difference_session_code" json:"session_id"`
	ItemCode      string `gorm:"size:120;uniqueIndex:idx_difference_session_code" json:"item_code"`
	Description   string `gorm:"size:255" json:"description"`
	PhysicalQty   int    `json:"physical_qty"`
	VirtualQty    int    `json:"virtual_qty"`
	DifferenceQty int    `json:"difference_qty"`
	Reason        string `gorm:"size:40" json:"difference_reason"`
	Confirmed     bool   `json:"confirmed"`
	Bin           string `gorm:"size:120" json:"bin"`
	RecID         string `gorm:"size:120" json:"recid"`
	// Response records the last external-push outcome for this row.
	Response string `gorm:"size:255" json:"response"`
}

// DifferenceSerial associates a serial number with a difference row.
// Product references DifferenceItem.ItemCode by value, not ownership: a row
// with ToDo == ToDoRemoveAdd outlives its parent difference.
type DifferenceSerial struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	SessionID    string `gorm:"size:64;uniqueIndex:idx_serial_session_product_sn" json:"session_id"`
	Product      string `gorm:"size:120;uniqueIndex:idx_serial_session_product_sn" json:"product"`
	SerialNumber string `gorm:"size:120;uniqueIndex:idx_serial_session_product_sn" json:"serial_number"`
	ToDo         string `gorm:"size:20;default:none" json:"to_do"`
}
