package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/scopedev/scopepad/internal/apperr"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        username TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS files (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id INTEGER NOT NULL,
        title TEXT NOT NULL,
        source_code TEXT NOT NULL,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE TABLE IF NOT EXISTS targets (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id INTEGER NOT NULL,
        name TEXT NOT NULL,
        UNIQUE (user_id, name),
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE TABLE IF NOT EXISTS messages (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        target_id INTEGER NOT NULL,
        sent BOOLEAN NOT NULL,
        text TEXT NOT NULL,
        code BOOLEAN NOT NULL,
        title TEXT NOT NULL,
        FOREIGN KEY (target_id) REFERENCES targets (id)
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// User methods

func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO users (username, password_hash) VALUES (?, ?)", username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return &User{ID: id, Username: username, PasswordHash: passwordHash}, nil
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, "SELECT id, username, password_hash FROM users WHERE username = ?", username).
		Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, "SELECT id, username, password_hash FROM users WHERE id = ?", id).
		Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// File methods

func (s *SQLiteStore) CreateFile(ctx context.Context, userID int64, title, sourceCode string) (*File, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO files (user_id, title, source_code) VALUES (?, ?, ?)", userID, title, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to insert file: %w", err)
	}
	id, _ := res.LastInsertId()
	return &File{ID: id, UserID: userID, Title: title, SourceCode: sourceCode}, nil
}

// GetFilesByUserID returns the user's files in ascending id order. The
// ORDER BY is load-bearing: binary lookup over the result depends on it.
func (s *SQLiteStore) GetFilesByUserID(ctx context.Context, userID int64) ([]File, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, user_id, title, source_code FROM files WHERE user_id = ? ORDER BY id ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.UserID, &f.Title, &f.SourceCode); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (s *SQLiteStore) UpdateFileSource(ctx context.Context, fileID int64, sourceCode string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE files SET source_code = ? WHERE id = ?", sourceCode, fileID)
	if err != nil {
		return fmt.Errorf("failed to update file: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteFile(ctx context.Context, fileID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM files WHERE id = ?", fileID)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Target methods

func (s *SQLiteStore) CreateTarget(ctx context.Context, userID int64, name string) (*Target, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO targets (user_id, name) VALUES (?, ?)", userID, name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to insert target: %w", err)
	}
	id, _ := res.LastInsertId()
	return &Target{ID: id, UserID: userID, Name: name}, nil
}

// GetTargetsByUserID returns the user's targets in ascending id order.
func (s *SQLiteStore) GetTargetsByUserID(ctx context.Context, userID int64) ([]Target, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, user_id, name FROM targets WHERE user_id = ? ORDER BY id ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query targets: %w", err)
	}
	defer rows.Close()

	var targets []Target
	for rows.Next() {
		var t Target
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan target row: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

func (s *SQLiteStore) GetTargetByUserAndName(ctx context.Context, userID int64, name string) (*Target, error) {
	var t Target
	err := s.db.QueryRowContext(ctx, "SELECT id, user_id, name FROM targets WHERE user_id = ? AND name = ?", userID, name).
		Scan(&t.ID, &t.UserID, &t.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query target: %w", err)
	}
	return &t, nil
}

// DeleteTargetCascade removes a target together with all of its messages in
// one transaction. The counterpart target on the other side of the
// conversation is an independent row and is left untouched.
func (s *SQLiteStore) DeleteTargetCascade(ctx context.Context, targetID int64) error {
	return s.withTx(ctx, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE target_id = ?", targetID); err != nil {
			return fmt.Errorf("failed to delete target messages: %w", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM targets WHERE id = ?", targetID)
		if err != nil {
			return fmt.Errorf("failed to delete target: %w", err)
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			return apperr.ErrNotFound
		}
		return nil
	})
}

// Message methods

// GetMessagesByTargetID returns the target's messages in ascending id order.
func (s *SQLiteStore) GetMessagesByTargetID(ctx context.Context, targetID int64) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, target_id, sent, text, code, title FROM messages WHERE target_id = ? ORDER BY id ASC", targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.TargetID, &m.Sent, &m.Text, &m.Code, &m.Title); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// SendMirroredMessage writes the sent/received message pair in one
// transaction, creating the recipient's mirror target first when it does
// not exist yet. Either all three writes land or none do.
func (s *SQLiteStore) SendMirroredMessage(ctx context.Context, senderTargetID, recipientUserID int64, mirrorName, text, title string, code bool) error {
	return s.withTx(ctx, func(ctx context.Context, tx DBTX) error {
		var mirrorID int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM targets WHERE user_id = ? AND name = ?", recipientUserID, mirrorName).Scan(&mirrorID)
		if err == sql.ErrNoRows {
			res, err := tx.ExecContext(ctx, "INSERT INTO targets (user_id, name) VALUES (?, ?)", recipientUserID, mirrorName)
			if err != nil {
				return fmt.Errorf("failed to create mirror target: %w", err)
			}
			mirrorID, _ = res.LastInsertId()
		} else if err != nil {
			return fmt.Errorf("failed to resolve mirror target: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO messages (target_id, sent, text, code, title) VALUES (?, ?, ?, ?, ?)",
			senderTargetID, true, text, code, title); err != nil {
			return fmt.Errorf("failed to insert sent message: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO messages (target_id, sent, text, code, title) VALUES (?, ?, ?, ?, ?)",
			mirrorID, false, text, code, title); err != nil {
			return fmt.Errorf("failed to insert received message: %w", err)
		}
		return nil
	})
}
