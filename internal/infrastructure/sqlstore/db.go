package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS user (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS client (
	id TEXT PRIMARY KEY,
	secret TEXT NOT NULL,
	label TEXT NOT NULL,
	scopes TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS auth_code (
	code TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL,
	scopes TEXT NOT NULL,
	expires_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES user(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS category (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	description TEXT,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS server (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT,
	icon TEXT,
	owner_id INTEGER NOT NULL,
	category_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (owner_id) REFERENCES user(id) ON DELETE CASCADE,
	FOREIGN KEY (category_id) REFERENCES category(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS server_member (
	server_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	PRIMARY KEY (server_id, user_id),
	FOREIGN KEY (server_id) REFERENCES server(id) ON DELETE CASCADE,
	FOREIGN KEY (user_id) REFERENCES user(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_server_category_id ON server(category_id);
CREATE INDEX IF NOT EXISTS idx_server_member_user_id ON server_member(user_id);
CREATE INDEX IF NOT EXISTS idx_auth_codes_expires_at ON auth_code(expires_at);
`

// category.name uses a binary collation so name filters stay case-sensitive,
// matching SQLite's default BINARY comparison.
const mysqlSchema = `
CREATE TABLE IF NOT EXISTS user (
	id BIGINT PRIMARY KEY AUTO_INCREMENT,
	username VARCHAR(150) NOT NULL UNIQUE,
	password VARCHAR(255) NOT NULL,
	created_at DATETIME(6) NOT NULL,
	updated_at DATETIME(6) NOT NULL
);

CREATE TABLE IF NOT EXISTS client (
	id VARCHAR(36) PRIMARY KEY,
	secret VARCHAR(255) NOT NULL,
	label VARCHAR(255) NOT NULL,
	scopes TEXT NOT NULL,
	created_at DATETIME(6) NOT NULL,
	updated_at DATETIME(6) NOT NULL
);

CREATE TABLE IF NOT EXISTS auth_code (
	code VARCHAR(36) PRIMARY KEY,
	user_id BIGINT NOT NULL,
	scopes TEXT NOT NULL,
	expires_at DATETIME(6) NOT NULL,
	created_at DATETIME(6) NOT NULL,
	INDEX idx_auth_codes_expires_at (expires_at),
	FOREIGN KEY (user_id) REFERENCES user(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS category (
	id BIGINT PRIMARY KEY AUTO_INCREMENT,
	name VARCHAR(100) COLLATE utf8mb4_bin NOT NULL UNIQUE,
	description TEXT,
	created_at DATETIME(6) NOT NULL
) DEFAULT CHARSET = utf8mb4;

CREATE TABLE IF NOT EXISTS server (
	id BIGINT PRIMARY KEY AUTO_INCREMENT,
	name VARCHAR(100) NOT NULL,
	description TEXT,
	icon VARCHAR(255),
	owner_id BIGINT NOT NULL,
	category_id BIGINT NOT NULL,
	created_at DATETIME(6) NOT NULL,
	INDEX idx_server_category_id (category_id),
	FOREIGN KEY (owner_id) REFERENCES user(id) ON DELETE CASCADE,
	FOREIGN KEY (category_id) REFERENCES category(id) ON DELETE CASCADE
) DEFAULT CHARSET = utf8mb4;

CREATE TABLE IF NOT EXISTS server_member (
	server_id BIGINT NOT NULL,
	user_id BIGINT NOT NULL,
	PRIMARY KEY (server_id, user_id),
	INDEX idx_server_member_user_id (user_id),
	FOREIGN KEY (server_id) REFERENCES server(id) ON DELETE CASCADE,
	FOREIGN KEY (user_id) REFERENCES user(id) ON DELETE CASCADE
);
`

type DB struct {
	*sqlx.DB
}

// New opens the database for the given driver and creates the schema.
// For sqlite the dsn is a file path (":memory:" for tests); for mysql it is a
// go-sql-driver DSN and must include parseTime=true.
func New(driver, dsn string) (*DB, error) {
	var schema string
	switch driver {
	case DriverSQLite, "":
		driver = DriverSQLite
		schema = sqliteSchema
	case DriverMySQL:
		schema = mysqlSchema
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		if err := configureSQLite(db, dsn); err != nil {
			db.Close()
			return nil, err
		}
	}

	// Statements run one at a time; the mysql driver rejects multi statements by default
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &DB{db}, nil
}

func configureSQLite(db *sqlx.DB, dsn string) error {
	// Every connection to ":memory:" opens its own empty database
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// NullString helper for optional string fields
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}
