package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rpupo63/sideshub-backend/config"
	"github.com/rpupo63/sideshub-backend/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

type Database struct {
	db                *gorm.DB
	userRepo          *UserRepo
	projectRepo       *ProjectRepo
	communityPostRepo *CommunityPostRepo
	likeRepo          *LikeRepo
	bookmarkRepo      *BookmarkRepo
	commentRepo       *CommentRepo
	viewRepo          *ViewRepo
	counterRepo       *CounterRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:                db,
		userRepo:          NewUserRepo(db),
		projectRepo:       NewProjectRepo(db),
		communityPostRepo: NewCommunityPostRepo(db),
		likeRepo:          NewLikeRepo(db),
		bookmarkRepo:      NewBookmarkRepo(db),
		commentRepo:       NewCommentRepo(db),
		viewRepo:          NewViewRepo(db),
		counterRepo:       NewCounterRepo(db),
	}
}

// Ping checks that the primary database answers.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) CommunityPostRepo() *CommunityPostRepo {
	return d.communityPostRepo
}

func (d Database) LikeRepo() *LikeRepo {
	return d.likeRepo
}

func (d Database) BookmarkRepo() *BookmarkRepo {
	return d.bookmarkRepo
}

func (d Database) CommentRepo() *CommentRepo {
	return d.commentRepo
}

func (d Database) ViewRepo() *ViewRepo {
	return d.viewRepo
}

func (d Database) CounterRepo() *CounterRepo {
	return d.counterRepo
}

// Open connects to the primary Postgres database named by DATABASE_URL.
// When DATABASE_REPLICA_URL is set, reads are routed to the replica through
// dbresolver while writes and transactions stay on the primary.
func Open(c map[string]string) (*gorm.DB, error) {
	dsn := config.GetString(c, "DATABASE_URL", "")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             config.GetDuration(c, "DB_SLOW_THRESHOLD", 2*time.Second),
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  config.GetString(c, "APP_ENV", "production") == "development",
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if replica := config.GetString(c, "DATABASE_REPLICA_URL", ""); replica != "" {
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.New(postgres.Config{
				DSN:                  replica,
				PreferSimpleProtocol: true,
			})},
			Policy:            dbresolver.RandomPolicy{},
			TraceResolverMode: config.GetString(c, "APP_ENV", "production") == "development",
		})
		if err := db.Use(resolver); err != nil {
			return nil, fmt.Errorf("register read replica: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(config.GetInt(c, "DB_MAX_OPEN_CONNS", 25))
	sqlDB.SetMaxIdleConns(config.GetInt(c, "DB_MAX_OPEN_CONNS", 25) / 2)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// Models lists every table owned by this service in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Project{},
		&models.CommunityPost{},
		&models.ProjectLike{},
		&models.PostLike{},
		&models.ProjectBookmark{},
		&models.Comment{},
		&models.ProjectView{},
	}
}

// Migrate creates or updates the schema for all models, including the unique
// indexes behind like and bookmark idempotency and the cascading foreign keys.
func Migrate(db *gorm.DB) error {
	migrateDB := db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})
	if err := migrateDB.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
