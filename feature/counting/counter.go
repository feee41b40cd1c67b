package counting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inventory-counter/feature/counting/models"

	"gorm.io/gorm"
)

// ScanRequest is a single increment applied to a session's physical count.
// Description and ExpectedQty overwrite the row only when supplied.
type ScanRequest struct {
	Code        string  `json:"code"`
	Increment   int     `json:"increment"`
	Description *string `json:"description"`
	ExpectedQty *int    `json:"expected_qty"`
}

// UpsertCount adds an increment to the physical count of the given code,
// creating the row on first sight. The increment runs as a single atomic
// UPDATE so concurrent scanners never lose counts. Returns the session's
// refreshed physical set ordered by code.
func (s *Store) UpsertCount(ctx context.Context, sessionID string, req ScanRequest) ([]models.PhysicalItem, error) {
	sessionID = strings.TrimSpace(sessionID)
	req.Code = strings.TrimSpace(req.Code)
	if sessionID == "" || req.Code == "" {
		return nil, fmt.Errorf("session id and code are required: %w", ErrInvalidArgument)
	}
	if req.Increment == 0 {
		req.Increment = 1
	}

	db := s.db.WithContext(ctx)

	res := db.Model(&models.PhysicalItem{}).
		Where("session_id = ? AND code = ?", sessionID, req.Code).
		Update("qty", gorm.Expr("COALESCE(qty, 0) + ?", req.Increment))
	if res.Error != nil {
		return nil, fmt.Errorf("incrementing count for %s: %w", req.Code, res.Error)
	}

	if res.RowsAffected == 0 {
		if err := s.insertCount(db, sessionID, req); err != nil {
			return nil, err
		}
	} else if err := s.applyOverrides(db, sessionID, req); err != nil {
		return nil, err
	}

	var items []models.PhysicalItem
	err := db.Where("session_id = ?", sessionID).
		Order("code").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("reading counts for session %s: %w", sessionID, err)
	}
	return items, nil
}

// insertCount creates the first row for a code. When another scanner wins the
// insert race the duplicate-key error is swallowed and the increment retried
// once; a second zero-row update surfaces as ErrConcurrency.
func (s *Store) insertCount(db *gorm.DB, sessionID string, req ScanRequest) error {
	item := models.PhysicalItem{
		SessionID: sessionID,
		Code:      req.Code,
		Qty:       req.Increment,
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.ExpectedQty != nil {
		item.ExpectedQty = *req.ExpectedQty
	}
	s.seedFromVirtual(db, &item, req)

	err := db.Create(&item).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) && !isDuplicateKey(err) {
		return fmt.Errorf("creating count for %s: %w", req.Code, err)
	}

	res := db.Model(&models.PhysicalItem{}).
		Where("session_id = ? AND code = ?", sessionID, req.Code).
		Update("qty", gorm.Expr("COALESCE(qty, 0) + ?", req.Increment))
	if res.Error != nil {
		return fmt.Errorf("retrying count for %s: %w", req.Code, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("count for %s lost both insert and update: %w", req.Code, ErrConcurrency)
	}
	return nil
}

func (s *Store) applyOverrides(db *gorm.DB, sessionID string, req ScanRequest) error {
	updates := map[string]any{}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ExpectedQty != nil {
		updates["expected_qty"] = *req.ExpectedQty
	}
	if len(updates) == 0 {
		return nil
	}
	err := db.Model(&models.PhysicalItem{}).
		Where("session_id = ? AND code = ?", sessionID, req.Code).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("updating count row for %s: %w", req.Code, err)
	}
	return nil
}

// seedFromVirtual fills description and expected quantity from the session's
// virtual snapshot so a scanner sees what the system thinks it has. Supplied
// values win.
func (s *Store) seedFromVirtual(db *gorm.DB, item *models.PhysicalItem, req ScanRequest) {
	if req.Description != nil && req.ExpectedQty != nil {
		return
	}
	var virt models.VirtualItem
	err := db.Where("session_id = ? AND item_id = ?", item.SessionID, item.Code).
		First(&virt).Error
	if err != nil {
		return
	}
	if req.Description == nil {
		item.Description = virt.ShortDescription
	}
	if req.ExpectedQty == nil {
		item.ExpectedQty = virt.QtyOnHand
	}
}
