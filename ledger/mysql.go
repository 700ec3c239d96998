package ledger

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLLedger stores the verified set in a single-column table. Useful when
// the deployment already runs a database and the flat file is unwanted.
type MySQLLedger struct {
	conn *sql.DB
}

func OpenMySQL(dsn string) (*MySQLLedger, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	createTableSQL := `
    CREATE TABLE IF NOT EXISTS verified_users (
        user_id VARCHAR(32) NOT NULL PRIMARY KEY
    );`

	if _, err := conn.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLLedger{conn: conn}, nil
}

func (l *MySQLLedger) IsVerified(userID string) (bool, error) {
	var one int
	err := l.conn.QueryRow("SELECT 1 FROM verified_users WHERE user_id = ?", userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger query: %w", err)
	}
	return true, nil
}

func (l *MySQLLedger) MarkVerified(userID string) error {
	_, err := l.conn.Exec("INSERT IGNORE INTO verified_users (user_id) VALUES (?)", userID)
	if err != nil {
		return fmt.Errorf("ledger insert: %w", err)
	}
	return nil
}

func (l *MySQLLedger) Close() error { return l.conn.Close() }
