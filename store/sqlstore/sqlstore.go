// Package sqlstore keeps rules in a SQLite database through gorm.
package sqlstore

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/jvitoroc/gorules/store"
)

type ruleRecord struct {
	ID         uint32 `gorm:"primaryKey;autoIncrement:false"`
	Name       string `gorm:"uniqueIndex;not null"`
	RuleString string `gorm:"not null"`
}

func (ruleRecord) TableName() string {
	return "rules"
}

type metadataRecord struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

func (metadataRecord) TableName() string {
	return "metadata"
}

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// Open opens or creates the database at path and migrates its tables.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}

	if err := db.AutoMigrate(&ruleRecord{}, &metadataRecord{}); err != nil {
		return nil, fmt.Errorf("migrate database %q: %w", path, err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Store(ctx context.Context, name, text string) error {
	if name == "" {
		return store.ErrInvalidName
	}

	rec := &ruleRecord{
		ID:         uuid.New().ID(),
		Name:       name,
		RuleString: text,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"rule_string"}),
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("store rule %q: %w", name, err)
	}

	return nil
}

func (s *Store) Fetch(ctx context.Context, name string) (string, bool, error) {
	var recs []ruleRecord

	err := s.db.WithContext(ctx).Where("name = ?", name).Limit(1).Find(&recs).Error
	if err != nil {
		return "", false, fmt.Errorf("fetch rule %q: %w", name, err)
	}

	if len(recs) == 0 {
		return "", false, nil
	}

	return recs[0].RuleString, true, nil
}

func (s *Store) List(ctx context.Context) ([]store.Rule, error) {
	var recs []ruleRecord

	if err := s.db.WithContext(ctx).Order("name").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}

	rules := make([]store.Rule, len(recs))
	for i, r := range recs {
		rules[i] = store.Rule{ID: r.ID, Name: r.Name, Text: r.RuleString}
	}

	return rules, nil
}

func (s *Store) Remove(ctx context.Context, name string) error {
	if err := s.db.WithContext(ctx).Where("name = ?", name).Delete(&ruleRecord{}).Error; err != nil {
		return fmt.Errorf("remove rule %q: %w", name, err)
	}

	return nil
}

func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&metadataRecord{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("set metadata %q: %w", key, err)
	}

	return nil
}

func (s *Store) Metadata(ctx context.Context, key string) (string, bool, error) {
	var recs []metadataRecord

	if err := s.db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).Limit(1).Find(&recs).Error; err != nil {
		return "", false, fmt.Errorf("get metadata %q: %w", key, err)
	}

	if len(recs) == 0 {
		return "", false, nil
	}

	return recs[0].Value, true, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
