// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/hyperjump/miru/internal/models"
	"github.com/hyperjump/miru/internal/vector"
)

// SQLiteStorage implements Storage using SQLite. Embeddings are persisted in
// the codec wire format (bracketed comma-separated decimals).
type SQLiteStorage struct {
	db         *sql.DB
	dimensions int
	logger     *zap.Logger
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not
// exist. dimensions is the expected embedding dimension for write validation.
func NewSQLiteStorage(dbPath string, dimensions int, logger *zap.Logger) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStorage{db: db, dimensions: dimensions, logger: logger}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS images (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		description TEXT NOT NULL,
		embedding TEXT NOT NULL,
		image_url TEXT,
		uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_images_uploaded_at ON images(uploaded_at);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		metadata TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// InsertImage validates and stores an image with its embedding, returning the
// assigned ID. Vectors with the wrong dimension or non-finite elements are
// rejected; a failed write surfaces as a hard error to the caller.
func (s *SQLiteStorage) InsertImage(ctx context.Context, filename, description string, embedding []float64, imageURL string) (string, error) {
	if err := vector.Validate(embedding, s.dimensions); err != nil {
		return "", err
	}
	wire, err := vector.Encode(embedding)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO images (id, filename, description, embedding, image_url, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, filename, description, wire, imageURL, time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return id, nil
}

// GetImage returns an image by ID, including its embedding.
func (s *SQLiteStorage) GetImage(ctx context.Context, id string) (*models.ImageRecord, error) {
	var img models.ImageRecord
	var wire string
	var url sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, filename, description, embedding, image_url, uploaded_at
		 FROM images WHERE id = ?`, id,
	).Scan(&img.ID, &img.Filename, &img.Description, &wire, &url, &img.UploadedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("image not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	img.ImageURL = url.String
	img.Embedding, err = s.decodeEmbedding(wire, img.ID)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// decodeEmbedding parses a stored vector. Decode failures are fatal; a
// dimension mismatch on this read path is logged and the vector used as-is.
func (s *SQLiteStorage) decodeEmbedding(wire, id string) ([]float64, error) {
	vec, err := vector.Decode(wire)
	if err != nil {
		return nil, fmt.Errorf("stored embedding for %s: %w", id, err)
	}
	if err := vector.Validate(vec, s.dimensions); err != nil {
		s.logger.Warn("stored embedding has unexpected dimension",
			zap.String("id", id), zap.Int("got", len(vec)), zap.Int("want", s.dimensions))
	}
	return vec, nil
}

// ListImages returns all images without embeddings, newest first.
func (s *SQLiteStorage) ListImages(ctx context.Context) ([]*models.ImageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, description, image_url, uploaded_at
		 FROM images ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*models.ImageRecord
	for rows.Next() {
		var img models.ImageRecord
		var url sql.NullString
		if err := rows.Scan(&img.ID, &img.Filename, &img.Description, &url, &img.UploadedAt); err != nil {
			return nil, err
		}
		img.ImageURL = url.String
		images = append(images, &img)
	}
	return images, rows.Err()
}

// CorpusSnapshot returns all images with embeddings, ordered by insertion
// (rowid): earliest-inserted first, which is the tie-break order for ranking.
func (s *SQLiteStorage) CorpusSnapshot(ctx context.Context) ([]*models.ImageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, description, embedding, image_url, uploaded_at
		 FROM images ORDER BY rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*models.ImageRecord
	for rows.Next() {
		var img models.ImageRecord
		var wire string
		var url sql.NullString
		if err := rows.Scan(&img.ID, &img.Filename, &img.Description, &wire, &url, &img.UploadedAt); err != nil {
			return nil, err
		}
		img.ImageURL = url.String
		img.Embedding, err = s.decodeEmbedding(wire, img.ID)
		if err != nil {
			return nil, err
		}
		images = append(images, &img)
	}
	return images, rows.Err()
}

// DeleteImage removes an image by ID.
func (s *SQLiteStorage) DeleteImage(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE id = ?`, id)
	return err
}

// ClearImages removes all images. Bulk clear is the only mutation images
// support after insert.
func (s *SQLiteStorage) ClearImages(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM images`)
	return err
}

// CountImages returns the number of stored images.
func (s *SQLiteStorage) CountImages(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images`).Scan(&count)
	return count, err
}

// AddMessage appends a message to the default conversation.
func (s *SQLiteStorage) AddMessage(ctx context.Context, role, content string, metadata map[string]interface{}) (*models.Message, error) {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	msg := &models.Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO messages (id, role, content, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.Role, msg.Content, string(metadataJSON), msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	return msg, nil
}

// ListMessages returns all messages in chronological order.
func (s *SQLiteStorage) ListMessages(ctx context.Context) ([]*models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, metadata, created_at
		 FROM messages ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*models.Message
	for rows.Next() {
		var msg models.Message
		var metadataJSON sql.NullString
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &metadataJSON, &msg.CreatedAt); err != nil {
			return nil, err
		}
		if metadataJSON.String != "" {
			_ = json.Unmarshal([]byte(metadataJSON.String), &msg.Metadata)
		}
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}

// ClearMessages removes all messages.
func (s *SQLiteStorage) ClearMessages(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages`)
	return err
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
