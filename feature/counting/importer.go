package counting

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"inventory-counter/core/database"
	"inventory-counter/core/storage"
	"inventory-counter/core/utils"
	"inventory-counter/feature/counting/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ColumnMap names the source columns the importer reads. Only ItemID is
// required; unmapped fields are left at their zero values.
type ColumnMap struct {
	ItemID            string `mapstructure:"item_id" default:"item_id"`
	QtyOnHand         string `mapstructure:"qty_on_hand" default:"qty_on_hand"`
	PickedNotShipped  string `mapstructure:"picked_not_shipped" default:""`
	PickedNotInvoiced string `mapstructure:"picked_not_invoiced" default:""`
	Category          string `mapstructure:"category" default:""`
	Bin               string `mapstructure:"bin" default:""`
	WarehouseRef      string `mapstructure:"warehouse_ref" default:""`
	ShortDescription  string `mapstructure:"short_description" default:""`
	RecID             string `mapstructure:"rec_id" default:""`
	SerialList        string `mapstructure:"serial_list" default:""`
}

// ImportConfig selects and parameterizes the virtual-snapshot source.
type ImportConfig struct {
	// Mode is "csv" (object storage) or "sql" (source database query).
	Mode    string    `mapstructure:"mode" default:"csv"`
	Object  string    `mapstructure:"object" default:"snapshot.csv"`
	Query   string    `mapstructure:"query" default:""`
	Table   string    `mapstructure:"table" default:"inventory"`
	Columns ColumnMap `mapstructure:"columns"`
}

// Importer replaces a session's virtual snapshot from an external source.
type Importer struct {
	store  *Store
	client storage.Client
	bucket string
	source *gorm.DB
	cfg    ImportConfig
	logger *zap.Logger
}

// NewImporter creates an importer. The source handle may be nil when the
// configured mode is csv.
func NewImporter(store *Store, client storage.Client, bucket string, source *gorm.DB, cfg ImportConfig, logger *zap.Logger) *Importer {
	return &Importer{
		store:  store,
		client: client,
		bucket: bucket,
		source: source,
		cfg:    cfg,
		logger: logger,
	}
}

// Run fetches the snapshot, maps it to virtual items and replaces the
// session's virtual collection wholesale. Nothing is persisted on error.
func (i *Importer) Run(ctx context.Context, sessionID string) (int, error) {
	session, err := i.store.Load(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	var items []models.VirtualItem
	switch i.cfg.Mode {
	case "csv":
		items, err = i.fromCSV(ctx, sessionID)
	case "sql":
		items, err = i.fromSQL(ctx, sessionID)
	default:
		return 0, fmt.Errorf("unknown import mode %q: %w", i.cfg.Mode, ErrInvalidArgument)
	}
	if err != nil {
		return 0, err
	}

	session.VirtualItems = items
	if session.Status == models.StatusDraft {
		session.Status = models.StatusCounting
	}
	if err := i.store.Save(ctx, session); err != nil {
		return 0, err
	}

	i.logger.Info("Virtual snapshot imported",
		zap.String("session_id", sessionID),
		zap.String("mode", i.cfg.Mode),
		zap.Int("items", len(items)))
	return len(items), nil
}

func (i *Importer) fromCSV(ctx context.Context, sessionID string) ([]models.VirtualItem, error) {
	obj, err := i.client.GetObject(ctx, i.bucket, i.cfg.Object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetching %s/%s: %w: %v", i.bucket, i.cfg.Object, ErrSourceUnavailable, err)
	}
	defer obj.Close()

	reader := csv.NewReader(obj)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w: %v", i.cfg.Object, ErrSourceUnavailable, err)
	}

	index := make(map[string]int, len(header))
	for pos, name := range header {
		index[strings.TrimSpace(name)] = pos
	}
	if err := i.checkMapping(func(col string) bool {
		_, ok := index[col]
		return ok
	}); err != nil {
		return nil, err
	}

	var items []models.VirtualItem
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w: %v", i.cfg.Object, ErrSourceUnavailable, err)
		}
		field := func(col string) any {
			pos, ok := index[col]
			if !ok || pos >= len(record) {
				return nil
			}
			return record[pos]
		}
		item := i.mapRow(sessionID, field)
		if item.ItemID == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (i *Importer) fromSQL(ctx context.Context, sessionID string) ([]models.VirtualItem, error) {
	if i.source == nil {
		return nil, fmt.Errorf("no source database configured: %w", ErrSourceUnavailable)
	}

	query := i.cfg.Query
	if query == "" {
		missing, err := database.HasColumns(i.source, i.cfg.Table, i.mappedColumns())
		if err != nil {
			return nil, fmt.Errorf("inspecting table %s: %w: %v", i.cfg.Table, ErrSourceUnavailable, err)
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("table %s is missing columns %v: %w", i.cfg.Table, missing, ErrMapping)
		}
		query = "SELECT * FROM " + i.cfg.Table
	}

	var rows []map[string]any
	if err := i.source.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying source: %w: %v", ErrSourceUnavailable, err)
	}

	if len(rows) > 0 {
		if err := i.checkMapping(func(col string) bool {
			_, ok := rows[0][col]
			return ok
		}); err != nil {
			return nil, err
		}
	}

	var items []models.VirtualItem
	for _, row := range rows {
		field := func(col string) any { return row[col] }
		item := i.mapRow(sessionID, field)
		if item.ItemID == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// checkMapping verifies every mapped column exists in the source before any
// row is converted.
func (i *Importer) checkMapping(has func(string) bool) error {
	for _, col := range i.mappedColumns() {
		if !has(col) {
			return fmt.Errorf("mapped column %q not found in source: %w", col, ErrMapping)
		}
	}
	return nil
}

func (i *Importer) mappedColumns() []string {
	c := i.cfg.Columns
	all := []string{
		c.ItemID, c.QtyOnHand, c.PickedNotShipped, c.PickedNotInvoiced,
		c.Category, c.Bin, c.WarehouseRef, c.ShortDescription, c.RecID,
		c.SerialList,
	}
	var named []string
	for _, col := range all {
		if col != "" {
			named = append(named, col)
		}
	}
	return named
}

func (i *Importer) mapRow(sessionID string, field func(string) any) models.VirtualItem {
	c := i.cfg.Columns
	str := func(col string) string {
		if col == "" {
			return ""
		}
		return strings.TrimSpace(utils.ToString(field(col)))
	}
	num := func(col string) int {
		if col == "" {
			return 0
		}
		return utils.ToInt(field(col))
	}
	return models.VirtualItem{
		SessionID:         sessionID,
		ItemID:            str(c.ItemID),
		QtyOnHand:         num(c.QtyOnHand),
		PickedNotShipped:  num(c.PickedNotShipped),
		PickedNotInvoiced: num(c.PickedNotInvoiced),
		Category:          str(c.Category),
		Bin:               str(c.Bin),
		WarehouseRef:      str(c.WarehouseRef),
		ShortDescription:  str(c.ShortDescription),
		RecID:             str(c.RecID),
		SerialList:        str(c.SerialList),
	}
}
