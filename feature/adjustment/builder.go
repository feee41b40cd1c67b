package adjustment

import (
	"strings"

	"inventory-counter/feature/counting/models"
)

// Detail is one adjustment line sent to the inventory system.
type Detail struct {
	CatalogRef       string `json:"catalog_ref"`
	WarehouseRef     string `json:"warehouse_ref"`
	BinRef           string `json:"bin_ref"`
	QuantityAdjusted int    `json:"quantity_adjusted"`
	SerialNumbers    string `json:"serial_numbers,omitempty"`
}

// BuildBatch converts the session's confirmed difference rows into
// adjustment details. Rows that are unconfirmed or net to zero are skipped;
// an empty batch is a valid result.
func BuildBatch(session *models.CountSession) []Detail {
	if session == nil {
		return nil
	}

	flagged := flaggedSerials(session)

	var details []Detail
	for idx := range session.DifferenceItems {
		row := &session.DifferenceItems[idx]
		if !pushable(row) {
			continue
		}
		details = append(details, detailFor(session, row, flagged))
	}
	return details
}

func pushable(row *models.DifferenceItem) bool {
	return row.Confirmed && row.DifferenceQty != 0
}

func detailFor(session *models.CountSession, row *models.DifferenceItem, flagged map[string][]string) Detail {
	return Detail{
		CatalogRef:       row.RecID,
		WarehouseRef:     warehouseForItem(session, row.ItemCode),
		BinRef:           row.Bin,
		QuantityAdjusted: row.DifferenceQty,
		SerialNumbers:    strings.Join(flagged[row.ItemCode], ","),
	}
}

// flaggedSerials indexes the session's remove_add serials by product.
func flaggedSerials(session *models.CountSession) map[string][]string {
	out := make(map[string][]string)
	for _, sn := range session.SerialNumbers {
		if sn.ToDo != models.ToDoRemoveAdd {
			continue
		}
		out[sn.Product] = append(out[sn.Product], sn.SerialNumber)
	}
	return out
}

func warehouseForItem(session *models.CountSession, code string) string {
	for _, v := range session.VirtualItems {
		if strings.TrimSpace(v.ItemID) == code {
			return v.WarehouseRef
		}
	}
	return ""
}
