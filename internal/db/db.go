package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/amiral-e/esp-back-sub001/internal/chat"
	"github.com/amiral-e/esp-back-sub001/internal/models"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(mysql.Open(withFoundRows(dsn)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return gdb, nil
}

// withFoundRows forces clientFoundRows on the DSN. Without it the mysql
// driver reports rows changed rather than rows matched, and an update that
// writes a column's current value back would read as "no matching row".
func withFoundRows(dsn string) string {
	if strings.Contains(dsn, "clientFoundRows=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "clientFoundRows=true"
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.Category{},
		&models.Price{},
		&models.Level{},
		&chat.Conversation{},
	)
}
