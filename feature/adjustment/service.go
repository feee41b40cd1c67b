package adjustment

import (
	"context"
	"fmt"
	"time"

	"inventory-counter/feature/counting"
	"inventory-counter/feature/counting/models"

	"go.uber.org/zap"
)

// PushResult summarizes one push to the adjustment API.
type PushResult struct {
	Status  string                  `json:"status"`
	Pushed  int                     `json:"pushed"`
	Failed  int                     `json:"failed"`
	Skipped int                     `json:"skipped"`
	Rows    []models.DifferenceItem `json:"rows"`
}

// Service pushes confirmed differences to the inventory system.
type Service struct {
	store  *counting.Store
	client Client
	cfg    Config
	logger *zap.Logger
}

// NewService creates a new adjustment service.
func NewService(store *counting.Store, client Client, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Push creates one adjustment for the session and a detail per confirmed
// difference row. Each row records the outcome in its Response field; a
// failed parent create aborts the whole push. The session is saved once at
// the end regardless of per-row failures.
func (s *Service) Push(ctx context.Context, sessionID string) (*PushResult, error) {
	session, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := &PushResult{Status: "success"}

	flagged := flaggedSerials(session)
	var pending []*models.DifferenceItem
	for idx := range session.DifferenceItems {
		row := &session.DifferenceItems[idx]
		if pushable(row) {
			pending = append(pending, row)
		} else {
			result.Skipped++
		}
	}

	if len(pending) == 0 {
		result.Rows = session.DifferenceItems
		return result, nil
	}

	adjustmentID, err := s.client.CreateAdjustment(ctx, Adjustment{
		Reference: sessionID,
		Memo:      fmt.Sprintf("inventory count %s pushed %s", sessionID, time.Now().Format("2006-01-02")),
	})
	if err != nil {
		return nil, fmt.Errorf("creating adjustment for session %s: %w", sessionID, err)
	}

	for _, row := range pending {
		detail := detailFor(session, row, flagged)
		if err := s.client.CreateDetail(ctx, adjustmentID, detail); err != nil {
			row.Response = s.truncate(err.Error())
			result.Failed++
			s.logger.Warn("Adjustment detail push failed",
				zap.String("session_id", sessionID),
				zap.String("item_code", row.ItemCode),
				zap.Error(err))
			continue
		}
		row.Response = "success"
		result.Pushed++
	}

	if result.Failed > 0 {
		result.Status = "partial_success"
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	result.Rows = session.DifferenceItems

	s.logger.Info("Adjustment push finished",
		zap.String("session_id", sessionID),
		zap.String("status", result.Status),
		zap.Int("pushed", result.Pushed),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (s *Service) truncate(msg string) string {
	max := s.cfg.MaxResponseLen
	if max <= 0 {
		max = 140
	}
	// Cut on rune boundaries; upstream error text can carry multi-byte
	// characters and the column length counts characters, not bytes.
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max])
}
