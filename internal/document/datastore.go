package document

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// DBTX is the interface for database operations.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Datastore handles database operations for documents.
type Datastore struct {
	db DBTX
}

// NewDatastore creates a new document datastore.
func NewDatastore(db DBTX) *Datastore {
	return &Datastore{db: db}
}

// validity is read as its array literal, e.g. {2024-01-01,2025-01-01}.
const documentColumns = `doc_id, user_id, name, location, type, year, validity::text`

// FindByOwner returns every document owned by ownerID.
func (ds *Datastore) FindByOwner(ctx context.Context, ownerID int64) ([]*Record, error) {
	query := `SELECT ` + documentColumns + `
		FROM documents WHERE user_id = $1
		ORDER BY doc_id`
	return ds.list(ctx, query, ownerID)
}

// FindByOwnerAndName returns the documents owned by ownerID with exactly this name.
func (ds *Datastore) FindByOwnerAndName(ctx context.Context, ownerID int64, name string) ([]*Record, error) {
	query := `SELECT ` + documentColumns + `
		FROM documents WHERE user_id = $1 AND name = $2
		ORDER BY doc_id`
	return ds.list(ctx, query, ownerID, name)
}

// FindByOwnerAndTypeIn returns the documents owned by ownerID whose type is one of types.
func (ds *Datastore) FindByOwnerAndTypeIn(ctx context.Context, ownerID int64, types []string) ([]*Record, error) {
	query := `SELECT ` + documentColumns + `
		FROM documents WHERE user_id = $1 AND type = ANY($2)
		ORDER BY doc_id`
	return ds.list(ctx, query, ownerID, pq.Array(types))
}

func (ds *Datastore) list(ctx context.Context, query string, args ...any) ([]*Record, error) {
	rows, err := ds.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (*Record, error) {
	var (
		r        Record
		owner    sql.NullInt64
		year     sql.NullString
		validity pq.StringArray
	)
	if err := rows.Scan(&r.ID, &owner, &r.Name, &r.Location, &r.Type, &year, &validity); err != nil {
		return nil, err
	}

	if !owner.Valid {
		return nil, fmt.Errorf("%w: document %d has no owner", ErrCorruptRecord, r.ID)
	}
	r.OwnerID = owner.Int64

	if year.Valid {
		r.Year = &year.String
	}

	r.Validity = make([]Date, 0, len(validity))
	for _, s := range validity {
		d, err := ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("%w: document %d has invalid validity date %q", ErrCorruptRecord, r.ID, s)
		}
		r.Validity = append(r.Validity, d)
	}

	return &r, nil
}
