package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/meridiancde/nmtc-backend/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026053001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	org_id TEXT NOT NULL DEFAULT '',
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	ocr_status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	parsed_index JSONB NOT NULL DEFAULT '{}'::jsonb,
	uploaded_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_ocr_status ON documents(ocr_status);
CREATE INDEX IF NOT EXISTS idx_documents_uploaded_at ON documents(uploaded_at DESC);
CREATE INDEX IF NOT EXISTS idx_documents_detected_type
	ON documents ((parsed_index->'detection_results'->>'document_type_detected'));
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	indexJSON, err := json.Marshal(doc.Index)
	if err != nil {
		return fmt.Errorf("marshal parsed index: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, org_id, filename, mime_type, storage_path, ocr_status, error_message, parsed_index, uploaded_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		doc.ID, doc.OrgID, doc.Filename, doc.MimeType, doc.StoragePath,
		string(doc.OCRStatus), doc.Error, indexJSON, doc.UploadedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, org_id, filename, mime_type, storage_path, ocr_status, error_message, parsed_index, uploaded_at, updated_at
FROM documents
WHERE id = $1
`, id)

	var doc domain.Document
	var indexRaw []byte
	var status string

	err := row.Scan(
		&doc.ID, &doc.OrgID, &doc.Filename, &doc.MimeType, &doc.StoragePath,
		&status, &doc.Error, &indexRaw, &doc.UploadedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%s", domain.ErrDocumentNotFound, id)
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	if err := json.Unmarshal(indexRaw, &doc.Index); err != nil {
		return nil, fmt.Errorf("unmarshal parsed index: %w", err)
	}
	doc.OCRStatus = domain.OCRStatus(status)
	return &doc, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.OCRStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET ocr_status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document status rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: id=%s", domain.ErrDocumentNotFound, id)
	}
	return nil
}

// SaveProcessingIndex merges stage output into the parsed index. The jsonb
// concatenation preserves top-level keys written by stages not present in
// the incoming index.
func (r *DocumentRepository) SaveProcessingIndex(ctx context.Context, id string, index domain.ProcessingIndex) error {
	indexJSON, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("marshal parsed index: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET parsed_index = parsed_index || $2::jsonb, updated_at = $3
WHERE id = $1
`, id, indexJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save parsed index: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save parsed index rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: id=%s", domain.ErrDocumentNotFound, id)
	}
	return nil
}

func (r *DocumentRepository) SaveConfirmation(ctx context.Context, id string, confirmed domain.DocumentType, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET parsed_index = jsonb_set(
		jsonb_set(parsed_index, '{detection_results,user_confirmed_type}', to_jsonb($2::text)),
		'{detection_results,confirmed_at}', to_jsonb($3::timestamptz)),
	updated_at = $4
WHERE id = $1 AND parsed_index ? 'detection_results'
`, id, string(confirmed), at, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save type confirmation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save type confirmation rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: id=%s", domain.ErrDocumentNotFound, id)
	}
	return nil
}
