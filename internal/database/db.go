package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the rooms and bookings tables when they do not
// exist yet.  The overlap check in the booking store relies on the
// (room_id, starts_at) index to keep the FOR UPDATE range scan cheap.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rooms (
			id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			number     VARCHAR(64)  NOT NULL,
			capacity   INT UNSIGNED NOT NULL,
			type       VARCHAR(16)  NOT NULL,
			location   VARCHAR(255) NULL,
			is_active  TINYINT(1)   NOT NULL DEFAULT 1,
			created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_rooms_number (number)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			room_id      BIGINT UNSIGNED NOT NULL,
			requester_id VARCHAR(128) NOT NULL,
			starts_at    DATETIME     NOT NULL,
			ends_at      DATETIME     NOT NULL,
			status       VARCHAR(16)  NOT NULL,
			created_at   DATETIME     NOT NULL,
			cancelled_at DATETIME     NULL,
			KEY idx_bookings_room_start (room_id, starts_at),
			KEY idx_bookings_requester (requester_id),
			CONSTRAINT fk_bookings_room FOREIGN KEY (room_id) REFERENCES rooms (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
