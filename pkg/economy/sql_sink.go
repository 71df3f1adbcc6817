package economy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SnapshotRecord is a row of economy_snapshots
type SnapshotRecord struct {
	ID         string    `gorm:"primaryKey;size:36"`
	Network    string    `gorm:"index;size:16"`
	CapturedAt time.Time `gorm:"index"`
	ErrorCount int
	Payload    string `gorm:"type:text"`
	CreatedAt  time.Time
}

func (SnapshotRecord) TableName() string { return "economy_snapshots" }

// SQLSink stores snapshots through gorm
type SQLSink struct {
	db *gorm.DB
}

// OpenSQLSink opens a postgres DSN (postgres:// or key=value form) or a
// sqlite path and migrates the snapshot table
func OpenSQLSink(dsn string) (*SQLSink, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("sql: dsn not configured")
	}
	var dialector gorm.Dialector
	if isPostgresDSN(dsn) {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("sql: open: %w", err)
	}
	return NewSQLSink(db)
}

// NewSQLSink wraps an open database and migrates the snapshot table
func NewSQLSink(db *gorm.DB) (*SQLSink, error) {
	if err := db.AutoMigrate(&SnapshotRecord{}); err != nil {
		return nil, fmt.Errorf("sql: migrate: %w", err)
	}
	return &SQLSink{db: db}, nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

func (s *SQLSink) Name() string { return "sql" }

func (s *SQLSink) Write(ctx context.Context, snap *Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("sql: encode snapshot: %w", err)
	}
	rec := SnapshotRecord{
		ID:         snap.ID,
		Network:    snap.Network,
		CapturedAt: snap.CapturedAt,
		ErrorCount: len(snap.Errors),
		Payload:    string(payload),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("sql: insert snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Latest loads the newest stored snapshot of a network
func (s *SQLSink) Latest(ctx context.Context, network string) (*Snapshot, error) {
	var rec SnapshotRecord
	err := s.db.WithContext(ctx).
		Where("network = ?", network).
		Order("captured_at desc").
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(rec.Payload), &snap); err != nil {
		return nil, fmt.Errorf("sql: decode snapshot %s: %w", rec.ID, err)
	}
	return &snap, nil
}

// Close releases the underlying connection pool
func (s *SQLSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
