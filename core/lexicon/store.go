package lexicon

import (
	"context"
	"database/sql"
	"time"

	"github.com/FocuswithJustin/hindilts/core/errors"
	"github.com/FocuswithJustin/hindilts/core/sqlite"
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS lexicons (
	name        TEXT PRIMARY KEY,
	fingerprint TEXT NOT NULL,
	entries     INTEGER NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	lexicon   TEXT NOT NULL,
	codepoint INTEGER NOT NULL,
	symbol    TEXT NOT NULL,
	type      TEXT NOT NULL,
	PRIMARY KEY (lexicon, codepoint)
);
`

// StoredLexicon describes one table saved in a Store.
type StoredLexicon struct {
	Name        string    `json:"name"`
	Fingerprint string    `json:"fingerprint"`
	Entries     int       `json:"entries"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists lexicon tables in a SQLite database so a deployment can
// ship one database file holding several named tables.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore opens (creating if needed) a lexicon database.
func OpenStore(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to initialise lexicon store %s", path)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores t under name, replacing any table previously saved there.
func (s *Store) Save(ctx context.Context, name string, t *Table) error {
	if name == "" {
		return errors.NewValidation("name", "must not be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE lexicon = ?`, name); err != nil {
		return errors.Wrap(err, "failed to clear entries")
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO lexicons (name, fingerprint, entries, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			entries = excluded.entries,
			created_at = excluded.created_at`,
		name, t.Fingerprint(), t.Len(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return errors.Wrap(err, "failed to write lexicon header")
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO entries (lexicon, codepoint, symbol, type) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare insert")
	}
	defer stmt.Close()

	for _, e := range t.Entries() {
		if _, err := stmt.ExecContext(ctx, name, int64(e.Codepoint), e.Symbol, e.Type.String()); err != nil {
			return errors.Wrapf(err, "failed to insert entry %s", e.Codepoint)
		}
	}

	return tx.Commit()
}

// Load reads the table saved under name.
func (s *Store) Load(ctx context.Context, name string) (*Table, error) {
	var fingerprint string
	err := s.db.QueryRowContext(ctx, `SELECT fingerprint FROM lexicons WHERE name = ?`, name).Scan(&fingerprint)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("lexicon", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read lexicon %s", name)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT codepoint, symbol, type FROM entries WHERE lexicon = ? ORDER BY codepoint`, name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read entries of %s", name)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			cp       int64
			symbol   string
			typeCode string
		)
		if err := rows.Scan(&cp, &symbol, &typeCode); err != nil {
			return nil, errors.Wrap(err, "failed to scan entry")
		}
		typ, ok := ParsePhoneType(typeCode)
		if !ok {
			return nil, errors.NewParse("lexicon", s.path, 0, "stored entry has unknown type "+typeCode)
		}
		entries = append(entries, Entry{Codepoint: Codepoint(cp), Symbol: symbol, Type: typ})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate entries")
	}

	t, err := NewTable(entries)
	if err != nil {
		return nil, err
	}
	if t.Fingerprint() != fingerprint {
		return nil, &errors.ValidationError{
			Field:   "fingerprint",
			Value:   name,
			Message: "stored entries do not match the recorded fingerprint",
		}
	}
	return t, nil
}

// List returns the saved tables ordered by name.
func (s *Store) List(ctx context.Context) ([]StoredLexicon, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, fingerprint, entries, created_at FROM lexicons ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list lexicons")
	}
	defer rows.Close()

	var out []StoredLexicon
	for rows.Next() {
		var (
			l       StoredLexicon
			created string
		)
		if err := rows.Scan(&l.Name, &l.Fingerprint, &l.Entries, &created); err != nil {
			return nil, errors.Wrap(err, "failed to scan lexicon")
		}
		l.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, l)
	}
	return out, rows.Err()
}

// Delete removes the table saved under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lexicons WHERE name = ?`, name)
	if err != nil {
		return errors.Wrapf(err, "failed to delete lexicon %s", name)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewNotFound("lexicon", name)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE lexicon = ?`, name); err != nil {
		return errors.Wrapf(err, "failed to delete entries of %s", name)
	}
	return nil
}
