package counting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inventory-counter/core/realtime"
	"inventory-counter/core/storage"
	"inventory-counter/core/tasks"
	"inventory-counter/feature/counting/models"
	"inventory-counter/feature/counting/reconcile"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const jobTimeout = 10 * time.Minute

// Service ties the session store, the reconciliation engine, the importer
// and the job runner together behind one API used by the HTTP handlers and
// the CLI commands.
type Service struct {
	store    *Store
	importer *Importer
	runner   *tasks.Runner
	hub      *realtime.Hub
	client   storage.Client
	bucket   string
	logger   *zap.Logger
}

// NewService creates a new counting service.
func NewService(store *Store, importer *Importer, runner *tasks.Runner, hub *realtime.Hub, client storage.Client, bucket string, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		importer: importer,
		runner:   runner,
		hub:      hub,
		client:   client,
		bucket:   bucket,
		logger:   logger,
	}
}

// CreateSessionRequest names a new session and its reconciliation settings.
type CreateSessionRequest struct {
	ID             string `json:"id"`
	CategoryFilter string `json:"category_filter"`
	QtyCalcMode    string `json:"qty_calc_mode"`
}

// CreateSession creates an empty draft session.
func (s *Service) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.CountSession, error) {
	mode := strings.TrimSpace(req.QtyCalcMode)
	if mode == "" {
		mode = models.CalcQOH
	}
	switch mode {
	case models.CalcQOH, models.CalcQOHPickedNotShipped,
		models.CalcQOHPickedNotInvoiced, models.CalcQOHPickedBoth:
	default:
		return nil, fmt.Errorf("unknown qty calc mode %q: %w", mode, ErrInvalidArgument)
	}

	session := &models.CountSession{
		ID:             req.ID,
		Status:         models.StatusDraft,
		CategoryFilter: strings.TrimSpace(req.CategoryFilter),
		QtyCalcMode:    mode,
	}
	if err := s.store.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession loads the full aggregate.
func (s *Service) GetSession(ctx context.Context, id string) (*models.CountSession, error) {
	return s.store.Load(ctx, id)
}

// Scan applies one counted increment and broadcasts the refreshed physical
// set to live watchers.
func (s *Service) Scan(ctx context.Context, sessionID string, req ScanRequest) ([]models.PhysicalItem, error) {
	items, err := s.store.UpsertCount(ctx, sessionID, req)
	if err != nil {
		return nil, err
	}
	s.hub.Broadcast(realtime.Event{
		Type:      realtime.EventPhysicalItems,
		SessionID: sessionID,
		Payload:   items,
	})
	return items, nil
}

// Reconcile rebuilds the session's difference rows synchronously. The
// session is saved only when the whole rebuild succeeded.
func (s *Service) Reconcile(ctx context.Context, sessionID string) error {
	session, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return err
	}

	cfg := reconcile.Config{
		CategoryFilter: session.CategoryFilter,
		QtyCalcMode:    session.QtyCalcMode,
	}
	diffs, serials, err := reconcile.Run(session, cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReconciliation, err)
	}

	session.DifferenceItems = diffs
	session.SerialNumbers = serials
	if session.Status == models.StatusDraft || session.Status == models.StatusCounting {
		session.Status = models.StatusReconciled
	}
	if err := s.store.Save(ctx, session); err != nil {
		return err
	}

	s.logger.Info("Session reconciled",
		zap.String("session_id", sessionID),
		zap.Int("differences", len(diffs)),
		zap.Int("serials", len(serials)))
	return nil
}

// EnqueueReconcile submits a reconcile job for the session. At most one job
// per session runs at a time.
func (s *Service) EnqueueReconcile(sessionID string) (string, error) {
	return s.runner.Submit(sessionID, "reconcile", jobTimeout, func(ctx context.Context) error {
		if err := s.Reconcile(ctx, sessionID); err != nil {
			return err
		}
		s.hub.Broadcast(realtime.Event{
			Type:      realtime.EventReconcileComplete,
			SessionID: sessionID,
		})
		return nil
	})
}

// EnqueueImport submits a virtual-snapshot import job for the session.
func (s *Service) EnqueueImport(sessionID string) (string, error) {
	return s.runner.Submit(sessionID, "import", jobTimeout, func(ctx context.Context) error {
		count, err := s.importer.Run(ctx, sessionID)
		if err != nil {
			return err
		}
		s.hub.Broadcast(realtime.Event{
			Type:      realtime.EventImportComplete,
			SessionID: sessionID,
			Message:   fmt.Sprintf("%d items imported", count),
		})
		return nil
	})
}

// Import runs the virtual-snapshot import synchronously.
func (s *Service) Import(ctx context.Context, sessionID string) (int, error) {
	return s.importer.Run(ctx, sessionID)
}

// ConfirmDifference sets the confirmed flag on one difference row.
func (s *Service) ConfirmDifference(ctx context.Context, sessionID, itemCode string, confirmed bool) (*models.CountSession, error) {
	session, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	itemCode = strings.TrimSpace(itemCode)
	found := false
	for idx := range session.DifferenceItems {
		if session.DifferenceItems[idx].ItemCode == itemCode {
			session.DifferenceItems[idx].Confirmed = confirmed
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("difference row %s: %w", itemCode, ErrNotFound)
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SetSerialRequest flags one serial number for handling.
type SetSerialRequest struct {
	Product      string `json:"product"`
	SerialNumber string `json:"serial_number"`
	ToDo         string `json:"to_do"`
}

// SetSerialToDo updates the to-do flag of one serial row.
func (s *Service) SetSerialToDo(ctx context.Context, sessionID string, req SetSerialRequest) (*models.CountSession, error) {
	switch req.ToDo {
	case models.ToDoNone, models.ToDoRemoveAdd:
	default:
		return nil, fmt.Errorf("unknown to_do value %q: %w", req.ToDo, ErrInvalidArgument)
	}

	session, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for idx := range session.SerialNumbers {
		sn := &session.SerialNumbers[idx]
		if sn.Product == req.Product && sn.SerialNumber == req.SerialNumber {
			sn.ToDo = req.ToDo
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("serial %s/%s: %w", req.Product, req.SerialNumber, ErrNotFound)
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Submit finalizes the session. Every difference row must be confirmed and
// at least one physical item must have been counted.
func (s *Service) Submit(ctx context.Context, sessionID string) (*models.CountSession, error) {
	session, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status == models.StatusSubmitted {
		return nil, fmt.Errorf("session %s is already submitted: %w", sessionID, ErrInvalidArgument)
	}
	if len(session.PhysicalItems) == 0 {
		return nil, fmt.Errorf("session %s has no counted items: %w", sessionID, ErrInvalidArgument)
	}
	if !session.AllDifferencesConfirmed() {
		return nil, fmt.Errorf("session %s has unconfirmed differences: %w", sessionID, ErrInvalidArgument)
	}

	session.Status = models.StatusSubmitted
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Session submitted", zap.String("session_id", sessionID))
	return session, nil
}

// ListSnapshots lists the snapshot objects available for import.
func (s *Service) ListSnapshots(ctx context.Context) ([]string, error) {
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{})
	var names []string
	for info := range objects {
		if info.Err != nil {
			return nil, fmt.Errorf("listing bucket %s: %w", s.bucket, info.Err)
		}
		names = append(names, info.Key)
	}
	return names, nil
}
