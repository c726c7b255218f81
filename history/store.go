// Package history persists a generation audit log: one row per
// completed generation. The model cache itself is never persisted;
// history exists for diagnostics and offline analysis.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Elarwei001/ocean-forest-3d-sub000/config"
	"github.com/Elarwei001/ocean-forest-3d-sub000/pipeline"
)

// Record is one completed generation.
type Record struct {
	ID          uint      `gorm:"primaryKey"`
	RequestID   string    `gorm:"size:64"`
	Fingerprint string    `gorm:"size:64;index"`
	Species     string    `gorm:"size:128;index"`
	Tier        string    `gorm:"size:16"`
	Quality     string    `gorm:"size:16"`
	Method      string    `gorm:"size:32"`
	IsFallback  bool
	VertexCount int
	DurationMS  int64
	CreatedAt   time.Time
}

// Store writes generation records through gorm.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to the configured database and migrates the schema.
func Open(cfg config.HistoryConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DSN())
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "mysql":
		dialector = mysql.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported history driver: %s (supported: sqlite, postgres, mysql)", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect history database: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate history schema: %w", err)
	}

	logger.Info("history store connected", zap.String("driver", cfg.Driver))
	return &Store{
		db:     db,
		logger: logger.With(zap.String("component", "history")),
	}, nil
}

// Append writes one record.
func (s *Store) Append(ctx context.Context, rec *Record) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("append history record: %w", err)
	}
	return nil
}

// Recent returns the latest records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []Record
	err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return out, nil
}

// CountBySpecies returns how many generations ran for a species.
func (s *Store) CountBySpecies(ctx context.Context, species string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Record{}).Where("species = ?", species).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Handler returns a pipeline event handler that records each finished
// generation. Writes happen on a detached goroutine so the handler
// never blocks the generation path.
func (s *Store) Handler() pipeline.EventHandler {
	return func(ev pipeline.Event) {
		rec := &Record{
			RequestID:   ev.RequestID,
			Fingerprint: ev.Fingerprint,
			Species:     ev.Species,
			Tier:        string(ev.Tier),
			Quality:     string(ev.Quality),
			Method:      string(ev.Method),
			IsFallback:  ev.IsFallback,
			VertexCount: ev.VertexCount,
			DurationMS:  ev.Duration.Milliseconds(),
			CreatedAt:   ev.GeneratedAt,
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.Append(ctx, rec); err != nil {
				s.logger.Warn("failed to record generation", zap.Error(err))
			}
		}()
	}
}
