package database

import (
	"strings"
	"time"

	"pensario-server/internal/domain"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table the server owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Note{},
		&domain.Reminder{},
		&domain.Attachment{},
		&domain.RevisionHistory{},
	}
}

// New opens PostgreSQL when databaseURL is set and SQLite at sqlitePath otherwise,
// then migrates the schema.
func New(databaseURL, sqlitePath string, log logrus.FieldLogger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if databaseURL != "" {
		dialector = postgres.Open(databaseURL)
	} else {
		dialector = sqlite.Open(sqliteDSN(sqlitePath))
	}

	db, err := Open(dialector)
	if err != nil {
		return nil, err
	}

	logBackend(db, sqlitePath, log)
	return db, nil
}

// Open connects with the given dialector and migrates. Tests pass an in-memory SQLite dialector.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if db.Dialector.Name() == "sqlite" {
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY between pooled conns.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "failed to access sql.DB")
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, errors.Wrap(err, "failed to migrate")
	}

	return db, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_foreign_keys=on"
}

func logBackend(db *gorm.DB, sqlitePath string, log logrus.FieldLogger) {
	switch strings.ToLower(db.Dialector.Name()) {
	case "postgres":
		log.Info("database: connected to PostgreSQL")
	case "sqlite":
		log.WithField("path", sqlitePath).Info("database: using SQLite")
	default:
		log.Infof("database: connected via %s", db.Dialector.Name())
	}
}
