package counting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inventory-counter/feature/counting/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists count sessions. A session is saved and loaded as a whole
// aggregate: the session row plus all of its child collections.
type Store struct {
	db *gorm.DB
}

// NewStore creates a session store on the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the counting tables.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&models.CountSession{},
		&models.PhysicalItem{},
		&models.VirtualItem{},
		&models.DifferenceItem{},
		&models.DifferenceSerial{},
	)
}

// Exists reports whether a session with the given id exists.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.CountSession{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking session %s: %w", id, err)
	}
	return count > 0, nil
}

// Load fetches a session with all child collections in deterministic order.
func (s *Store) Load(ctx context.Context, id string) (*models.CountSession, error) {
	var session models.CountSession
	err := s.db.WithContext(ctx).
		Preload("PhysicalItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("code")
		}).
		Preload("VirtualItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_id")
		}).
		Preload("DifferenceItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_code")
		}).
		Preload("SerialNumbers", func(db *gorm.DB) *gorm.DB {
			return db.Order("product, serial_number")
		}).
		First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	return &session, nil
}

// Create inserts a new session row. The id must not already exist.
func (s *Store) Create(ctx context.Context, session *models.CountSession) error {
	session.ID = strings.TrimSpace(session.ID)
	if session.ID == "" {
		return fmt.Errorf("session id is required: %w", ErrInvalidArgument)
	}
	if session.Status == "" {
		session.Status = models.StatusDraft
	}
	err := s.db.WithContext(ctx).Create(session).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKey(err) {
		return fmt.Errorf("session %s already exists: %w", session.ID, ErrInvalidArgument)
	}
	if err != nil {
		return fmt.Errorf("creating session %s: %w", session.ID, err)
	}
	return nil
}

// Save replaces the stored aggregate with the in-memory one. Child rows are
// rewritten wholesale so the database always mirrors the session exactly.
func (s *Store) Save(ctx context.Context, session *models.CountSession) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("session id is required: %w", ErrInvalidArgument)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.CountSession{
			ID:             session.ID,
			Status:         session.Status,
			CategoryFilter: session.CategoryFilter,
			QtyCalcMode:    session.QtyCalcMode,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "category_filter", "qty_calc_mode", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("upserting session %s: %w", session.ID, err)
		}

		if err := replaceChildren(tx, session); err != nil {
			return fmt.Errorf("saving session %s: %w", session.ID, err)
		}
		return nil
	})
}

func replaceChildren(tx *gorm.DB, session *models.CountSession) error {
	where := "session_id = ?"

	if err := tx.Where(where, session.ID).Delete(&models.PhysicalItem{}).Error; err != nil {
		return err
	}
	if err := tx.Where(where, session.ID).Delete(&models.VirtualItem{}).Error; err != nil {
		return err
	}
	if err := tx.Where(where, session.ID).Delete(&models.DifferenceItem{}).Error; err != nil {
		return err
	}
	if err := tx.Where(where, session.ID).Delete(&models.DifferenceSerial{}).Error; err != nil {
		return err
	}

	for i := range session.PhysicalItems {
		session.PhysicalItems[i].ID = 0
		session.PhysicalItems[i].SessionID = session.ID
	}
	for i := range session.VirtualItems {
		session.VirtualItems[i].ID = 0
		session.VirtualItems[i].SessionID = session.ID
	}
	for i := range session.DifferenceItems {
		session.DifferenceItems[i].ID = 0
		session.DifferenceItems[i].SessionID = session.ID
	}
	for i := range session.SerialNumbers {
		session.SerialNumbers[i].ID = 0
		session.SerialNumbers[i].SessionID = session.ID
	}

	if len(session.PhysicalItems) > 0 {
		if err := tx.CreateInBatches(session.PhysicalItems, 200).Error; err != nil {
			return err
		}
	}
	if len(session.VirtualItems) > 0 {
		if err := tx.CreateInBatches(session.VirtualItems, 200).Error; err != nil {
			return err
		}
	}
	if len(session.DifferenceItems) > 0 {
		if err := tx.CreateInBatches(session.DifferenceItems, 200).Error; err != nil {
			return err
		}
	}
	if len(session.SerialNumbers) > 0 {
		if err := tx.CreateInBatches(session.SerialNumbers, 200).Error; err != nil {
			return err
		}
	}
	return nil
}

// PurgeSerials removes serial rows that belong to no existing session.
// Sessions are normally deleted with their children cascading, but flagged
// serials written by older runs can outlive that; this cleans them up.
func (s *Store) PurgeSerials(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("session_id NOT IN (?)",
			s.db.Model(&models.CountSession{}).Select("id")).
		Delete(&models.DifferenceSerial{})
	if res.Error != nil {
		return 0, fmt.Errorf("purging orphaned serials: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// isDuplicateKey is a fallback for drivers whose duplicate-key errors the
// ORM does not translate.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint")
}
