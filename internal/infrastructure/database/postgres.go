package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sangkips/studio-ledger/internal/config"
	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens the database selected by cfg.Driver
func NewDB(cfg *config.DatabaseConfig, debug bool, log *zap.Logger) (*gorm.DB, error) {
	switch cfg.Driver {
	case "", "postgres":
		return NewPostgresDB(cfg, debug, log)
	case "sqlite":
		return NewSQLiteDB(cfg.SQLitePath, debug, log)
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func gormConfig(debug bool) *gorm.Config {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}
	return &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	log.Info("connected to PostgreSQL", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return db, nil
}

// NewSQLiteDB opens a SQLite database. Writers are serialized on a single
// connection, which is what makes the ledger's unit of work exclusive.
func NewSQLiteDB(path string, debug bool, log *zap.Logger) (*gorm.DB, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	log.Info("opened SQLite database", zap.String("path", path))
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		&entity.User{},
		&entity.Client{},
		&entity.PhotographyPackage{},
		&entity.Photographer{},
		&entity.PrintJob{},
		&entity.PhotoSession{},
		&entity.PaymentReceipt{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// SeedDefaultData creates the configured manager account when no manager
// exists yet
func SeedDefaultData(ctx context.Context, db *gorm.DB, admin *config.AdminConfig, log *zap.Logger) error {
	var managers int64
	if err := db.WithContext(ctx).Model(&entity.User{}).
		Where("role = ?", enum.UserRoleManager).
		Count(&managers).Error; err != nil {
		return fmt.Errorf("failed to count managers: %w", err)
	}
	if managers > 0 {
		return nil
	}

	if admin.Username == "" || admin.Password == "" {
		log.Warn("no manager account exists; set ADMIN_USERNAME and ADMIN_PASSWORD to create one")
		return nil
	}

	var existing entity.User
	err := db.WithContext(ctx).Where("username = ?", admin.Username).First(&existing).Error
	if err == nil {
		log.Warn("seed user exists but is not a manager", zap.String("username", admin.Username))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up seed user: %w", err)
	}

	hashed, err := utils.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	user := entity.User{
		Username:  admin.Username,
		FirstName: "Studio",
		LastName:  "Manager",
		Password:  hashed,
		Role:      enum.UserRoleManager,
		IsActive:  true,
	}
	if admin.Email != "" {
		email := admin.Email
		user.Email = &email
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create manager account: %w", err)
	}

	log.Info("manager account created", zap.String("username", user.Username))
	return nil
}
