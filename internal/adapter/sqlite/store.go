// Package sqlite persists the single cached weather snapshot with gorm on an
// embedded, cgo-free SQLite database.
package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/weather-sync-service/internal/domain"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// latestID is the fixed primary key of the only snapshot row.
const latestID = 1

type snapshotRow struct {
	ID          uint `gorm:"primaryKey;autoIncrement:false"`
	Name        string
	Temperature float64
	WindSpeed   float64
	WindDegrees *float64
	Timestamp   int64
	Conditions  []conditionRow `gorm:"foreignKey:SnapshotID"`
}

func (snapshotRow) TableName() string { return "weather_snapshots" }

type conditionRow struct {
	ID         uint `gorm:"primaryKey"`
	SnapshotID uint `gorm:"index"`
	Position   int
	Summary    string
	Icon       string
}

func (conditionRow) TableName() string { return "weather_conditions" }

// Store is the SQLite-backed weather cache.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database at path and migrates the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite %s: %w", domain.ErrStoreUnavailable, path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite handle: %w", domain.ErrStoreUnavailable, err)
	}
	// One connection serializes reads against the replace transaction and
	// keeps a ":memory:" database alive for the life of the store.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&snapshotRow{}, &conditionRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: migrate: %w", domain.ErrStoreUnavailable, err)
	}
	return &Store{db: db}, nil
}

// ReadLatest returns the cached snapshot, or nil when nothing was stored yet.
func (s *Store) ReadLatest(ctx context.Context) (*domain.WeatherSnapshot, error) {
	var row snapshotRow
	err := s.db.WithContext(ctx).
		Preload("Conditions", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&row, latestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read latest: %w", domain.ErrStoreUnavailable, err)
	}
	snap := row.toDomain()
	return &snap, nil
}

// Replace deletes the cached snapshot and writes snap in one transaction.
func (s *Store) Replace(ctx context.Context, snap domain.WeatherSnapshot) error {
	row := fromDomain(snap)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&conditionRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&snapshotRow{}).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("%w: replace: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func fromDomain(s domain.WeatherSnapshot) snapshotRow {
	row := snapshotRow{
		ID:          latestID,
		Name:        s.Name,
		Temperature: s.Temperature,
		WindSpeed:   s.Wind.Speed,
		Timestamp:   s.Timestamp,
	}
	if s.Wind.Degrees != nil {
		deg := *s.Wind.Degrees
		row.WindDegrees = &deg
	}
	for i, c := range s.Conditions {
		row.Conditions = append(row.Conditions, conditionRow{
			Position: i,
			Summary:  c.Summary,
			Icon:     c.Icon,
		})
	}
	return row
}

func (r snapshotRow) toDomain() domain.WeatherSnapshot {
	s := domain.WeatherSnapshot{
		Name:        r.Name,
		Temperature: r.Temperature,
		Wind:        domain.Wind{Speed: r.WindSpeed, Degrees: r.WindDegrees},
		Timestamp:   r.Timestamp,
		Conditions:  make([]domain.Condition, 0, len(r.Conditions)),
	}
	for _, c := range r.Conditions {
		s.Conditions = append(s.Conditions, domain.Condition{Summary: c.Summary, Icon: c.Icon})
	}
	return s
}
