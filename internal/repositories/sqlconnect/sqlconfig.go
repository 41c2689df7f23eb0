package sqlconnect

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"finance_io/pkg/utils"

	_ "github.com/go-sql-driver/mysql"
)

var DB *sql.DB

func ConnectDb() error {
	if DB != nil {
		return nil
	}

	utils.Logger.Info("Connecting to MariaDB...")

	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	port := utils.GetEnv("DB_PORT", "3306")
	host := utils.GetEnv("DB_HOST", "127.0.0.1")

	connectionString := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=false&charset=utf8mb4",
		user, password, host, port, dbname)

	db, err := sql.Open("mysql", connectionString)
	if err != nil {
		return fmt.Errorf("failed to open DB connection: %w", err)
	}

	db.SetMaxOpenConns(utils.GetEnvInt("DB_MAX_OPEN_CONNS", 25))
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping DB: %w", err)
	}

	DB = db
	utils.Logger.Info("✅ Connected to MariaDB")
	return nil
}
