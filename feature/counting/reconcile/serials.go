package reconcile

import (
	"sort"

	"inventory-counter/feature/counting/models"
)

type serialKey struct {
	product string
	serial  string
}

// associateSerials rebuilds the serial collection from the surviving
// difference rows' virtual serial lists.
//
// Rows whose ToDo flag is the action-pending value are protected: they are
// copied forward unchanged even when their product was pruned this run, an
// intentional escape hatch for serials mid remove/add workflow. Staged
// candidates are deduplicated against the protected set on
// (product, serial_number) and re-seeded with the prior run's ToDo value
// when one exists.
func associateSerials(session *models.CountSession, virtualByID map[string]models.VirtualItem, diffs []models.DifferenceItem) []models.DifferenceSerial {
	priorToDo := make(map[serialKey]string, len(session.SerialNumbers))
	seen := make(map[serialKey]struct{})

	var out []models.DifferenceSerial
	for _, sn := range session.SerialNumbers {
		k := serialKey{sn.Product, sn.SerialNumber}
		priorToDo[k] = sn.ToDo
		if sn.ToDo == models.ToDoRemoveAdd {
			out = append(out, models.DifferenceSerial{
				SessionID:    session.ID,
				Product:      sn.Product,
				SerialNumber: sn.SerialNumber,
				ToDo:         sn.ToDo,
			})
			seen[k] = struct{}{}
		}
	}

	for _, d := range diffs {
		v, ok := virtualByID[d.ItemCode]
		if !ok {
			continue
		}
		for _, sn := range v.Serials() {
			k := serialKey{d.ItemCode, sn}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}

			toDo := models.ToDoNone
			if prev, ok := priorToDo[k]; ok && prev != "" {
				toDo = prev
			}
			out = append(out, models.DifferenceSerial{
				SessionID:    session.ID,
				Product:      d.ItemCode,
				SerialNumber: sn,
				ToDo:         toDo,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Product != out[j].Product {
			return out[i].Product < out[j].Product
		}
		return out[i].SerialNumber < out[j].SerialNumber
	})

	return out
}
