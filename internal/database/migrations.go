package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/code-geek/ai-project-template/pkg/models"
)

// Migration is a single versioned schema change
type Migration interface {
	Version() string
	Description() string
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// SchemaMigration represents a migration record in the database
type SchemaMigration struct {
	Version   string    `gorm:"primaryKey;column:version"`
	AppliedAt time.Time `gorm:"column:applied_at"`
}

// TableName specifies the table name for SchemaMigration
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

// Migrator applies registered migrations and tracks them in the
// schema_migrations table. Its Pending view backs the readiness probe.
type Migrator struct {
	db         *gorm.DB
	logger     *zap.Logger
	migrations []Migration
}

// NewMigrator creates a migrator with the full migration set registered
func NewMigrator(db *gorm.DB, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger,
		migrations: []Migration{
			createUsersTable{},
		},
	}
}

// Run applies all pending migrations in version order
func (m *Migrator) Run(ctx context.Context) error {
	db := m.db.WithContext(ctx)

	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	sort.Slice(m.migrations, func(i, j int) bool {
		return m.migrations[i].Version() < m.migrations[j].Version()
	})

	for _, migration := range m.migrations {
		if applied[migration.Version()] {
			continue
		}

		m.logger.Info("Running migration",
			zap.String("version", migration.Version()),
			zap.String("description", migration.Description()),
		)

		if err := migration.Up(db); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", migration.Version(), err)
		}

		record := SchemaMigration{Version: migration.Version(), AppliedAt: time.Now().UTC()}
		if err := db.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version(), err)
		}

		m.logger.Info("Migration completed", zap.String("version", migration.Version()))
	}

	return nil
}

// Rollback reverts a single applied migration
func (m *Migrator) Rollback(ctx context.Context, version string) error {
	db := m.db.WithContext(ctx)

	for _, migration := range m.migrations {
		if migration.Version() != version {
			continue
		}

		m.logger.Info("Rolling back migration",
			zap.String("version", version),
			zap.String("description", migration.Description()),
		)

		if err := migration.Down(db); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", version, err)
		}

		if err := db.Delete(&SchemaMigration{}, "version = ?", version).Error; err != nil {
			return fmt.Errorf("failed to remove migration record %s: %w", version, err)
		}

		m.logger.Info("Migration rolled back", zap.String("version", version))
		return nil
	}

	return fmt.Errorf("migration %s not found", version)
}

// Pending returns the versions of registered migrations that have not
// been applied yet
func (m *Migrator) Pending(ctx context.Context) ([]string, error) {
	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var pending []string
	for _, migration := range m.migrations {
		if !applied[migration.Version()] {
			pending = append(pending, migration.Version())
		}
	}
	sort.Strings(pending)
	return pending, nil
}

// Status returns each registered migration version with its applied state
func (m *Migrator) Status(ctx context.Context) (map[string]bool, error) {
	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	status := make(map[string]bool, len(m.migrations))
	for _, migration := range m.migrations {
		status[migration.Version()] = applied[migration.Version()]
	}
	return status, nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[string]bool, error) {
	db := m.db.WithContext(ctx)

	// Before the first Run the ledger table may not exist
	if !db.Migrator().HasTable(&SchemaMigration{}) {
		return map[string]bool{}, nil
	}

	var records []SchemaMigration
	if err := db.Find(&records).Error; err != nil {
		return nil, err
	}

	applied := make(map[string]bool, len(records))
	for _, record := range records {
		applied[record.Version] = true
	}
	return applied, nil
}

// createUsersTable creates the users_user table
type createUsersTable struct{}

func (createUsersTable) Version() string     { return "001" }
func (createUsersTable) Description() string { return "create users_user table" }

func (createUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (createUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.User{})
}
