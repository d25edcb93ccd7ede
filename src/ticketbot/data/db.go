package data

import (
	"log"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codexdev/ticketbot/src/ticketbot/types"
)

func gormLogger() logger.Interface {
	return logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// MustOpen connects to the database named by dsn and exits on failure.
// A DSN containing "@tcp(" is treated as MySQL, anything else as a SQLite
// file path (the default local deployment).
func MustOpen(dsn string) *gorm.DB {
	db, err := Open(dsn)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	return db
}

func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: gormLogger()}
	if strings.Contains(dsn, "@tcp(") {
		dsn = ensureParam(dsn, "parseTime", "true")
		if !strings.Contains(dsn, "charset=") {
			dsn = ensureParam(dsn, "charset", "utf8mb4")
			dsn = ensureParam(dsn, "collation", "utf8mb4_unicode_ci")
		}
		return gorm.Open(mysql.Open(dsn), cfg)
	}
	return gorm.Open(sqlite.Open(dsn), cfg)
}

func ensureParam(dsn, key, val string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + val
}

// Migrate creates or extends the schema. AutoMigrate is additive only and
// safe to run on every start; columns are never dropped or renamed.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.GuildConfig{},
		&types.TicketCategory{},
		&types.Ticket{},
		&types.RateLimit{},
		&types.TicketRating{},
		&types.BlacklistEntry{},
		&types.SupportRole{},
	)
}
