package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/kova98/nbainsights/data"
)

// Postgres caps a statement at 65535 parameters; five columns per row.
const insertChunk = 1000

type DerivedRepo struct {
	db *sqlx.DB
}

func NewDerivedRepo(db *sqlx.DB) *DerivedRepo {
	return &DerivedRepo{db}
}

func (r *DerivedRepo) GetDerivedRows(batchKey, contentHash string) ([]data.DerivedRow, error) {
	var rows []data.DerivedRow
	query := `
		SELECT batch_key, content_hash, post_id, sentiment, language, created_at
		FROM derived_rows
		WHERE batch_key = $1 AND content_hash = $2`

	err := r.db.Select(&rows, query, batchKey, contentHash)
	if err != nil {
		return nil, fmt.Errorf("get derived rows: %w", err)
	}

	return rows, nil
}

func (r *DerivedRepo) SaveDerivedRows(rows []data.DerivedRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `
		INSERT INTO derived_rows (batch_key, content_hash, post_id, sentiment, language, created_at)
		VALUES (:batch_key, :content_hash, :post_id, :sentiment, :language, now())
		ON CONFLICT (batch_key, content_hash, post_id)
		DO UPDATE SET language = EXCLUDED.language
		WHERE derived_rows.language = ''`

	for start := 0; start < len(rows); start += insertChunk {
		end := min(start+insertChunk, len(rows))
		if _, err := r.db.NamedExec(query, rows[start:end]); err != nil {
			return fmt.Errorf("save derived rows: %w", err)
		}
	}

	return nil
}
