package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

const createKVTableSQL = `
CREATE TABLE IF NOT EXISTS KV (
    Key TEXT PRIMARY KEY,
    Value TEXT,
    UpdatedAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Store 是基于 sqlite 的键值存储，实现 snake.Store
type Store struct {
	db *sql.DB
}

// Open 打开数据库文件并建表
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite 单写者
	db.SetMaxOpenConns(1)

	if err := InitializeDatabase(db); err != nil {
		db.Close()
		return nil, err
	}
	log.WithField("path", path).Debug("sqlite store ready")
	return &Store{db: db}, nil
}

func executeSQL(db *sql.DB, sqlStatement string) error {
	if _, err := db.Exec(sqlStatement); err != nil {
		return fmt.Errorf("error executing SQL statement %q: %w", sqlStatement, err)
	}
	return nil
}

func InitializeDatabase(db *sql.DB) error {
	return executeSQL(db, createKVTableSQL)
}

// Get 读取键值，不存在时 ok 为 false
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT Value FROM KV WHERE Key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set 写入或覆盖键值
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO KV (Key, Value, UpdatedAt) VALUES (?, ?, CURRENT_TIMESTAMP)", key, value)
	return err
}

// Delete 删除键
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec("DELETE FROM KV WHERE Key = ?", key)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
