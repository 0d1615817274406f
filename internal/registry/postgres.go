package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// PackBinding is one row per user.
type PackBinding struct {
	UserID    string `gorm:"primaryKey;size:32"`
	PackName  string `gorm:"size:64;not null"`
	UpdatedAt time.Time
}

func (PackBinding) TableName() string { return "pack_bindings" }

// OpenPostgres connects and migrates the bindings table.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&PackBinding{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}
	return db, nil
}

type PostgresStore struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewPostgresStore(db *gorm.DB, log zerolog.Logger) *PostgresStore {
	return &PostgresStore{
		db:  db,
		log: log.With().Str("component", "registry").Str("backend", "postgres").Logger(),
	}
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (string, bool) {
	var b PackBinding
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&b).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("registry read failed, treating as empty")
		}
		return "", false
	}
	return b.PackName, b.PackName != ""
}

// Set upserts the user's row.
func (s *PostgresStore) Set(ctx context.Context, userID, packName string) error {
	b := PackBinding{UserID: userID, PackName: packName, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"pack_name", "updated_at"}),
	}).Create(&b).Error
	if err != nil {
		return fmt.Errorf("registry: upsert binding: %w", err)
	}
	return nil
}
