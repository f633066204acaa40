// Package coldstore is the relational tier of the three-tier
// cache-miss resolver (spec §4.4 tier 3): the vocabulary tables backing
// core bytes, English words, proper-noun labels, and the var-mint
// namespace, plus the boilerplate forward-walk table used to recognize
// Gutenberg-style header/footer sequences token by token.
package coldstore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/humancognome/textpbm/internal/errs"
	"github.com/humancognome/textpbm/internal/tokenid"
	"github.com/humancognome/textpbm/internal/vocab"
)

//go:embed sql/schema/base_schema.sql
var baseSchemaSQL string

// varNamespace and varP2 fix the (ns, p2) prefix newly minted vars are
// addressed under; the counter advances the remaining three pairs.
const (
	varNamespace = "AC"
	varP2        = "AA"
)

// Store wraps the vocabulary SQLite database.
type Store struct {
	db *sql.DB
	qb sq.StatementBuilderType
}

// Open opens (creating if absent) the vocabulary database at path and
// runs its schema migration.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open cold store: %v", errs.ErrStorage, err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: set busy_timeout: %v", errs.ErrStorage, err)
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -2000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			if p == "PRAGMA journal_mode = WAL" && strings.Contains(err.Error(), "database is locked") {
				continue
			}
			db.Close()
			return nil, fmt.Errorf("%w: execute %s: %v", errs.ErrStorage, p, err)
		}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(baseSchemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: apply base schema: %v", errs.ErrStorage, err)
	}

	s := &Store{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Counts reports how many entries each vocabulary shard holds, for the
// health action's readiness report (spec §6.1).
func (s *Store) Counts(ctx context.Context) (words, labels, chars int, err error) {
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vocab_words").Scan(&words); err != nil {
		return 0, 0, 0, fmt.Errorf("%w: count words: %v", errs.ErrStorage, err)
	}
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vocab_labels").Scan(&labels); err != nil {
		return 0, 0, 0, fmt.Errorf("%w: count labels: %v", errs.ErrStorage, err)
	}
	if err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vocab_chars").Scan(&chars); err != nil {
		return 0, 0, 0, fmt.Errorf("%w: count chars: %v", errs.ErrStorage, err)
	}
	return words, labels, chars, nil
}

// LookupChar resolves a single byte value to its vocabulary record.
func (s *Store) LookupChar(ctx context.Context, byteValue int) (vocab.Record, bool, error) {
	row := s.qb.Select("token_id", "category").From("vocab_chars").
		Where(sq.Eq{"byte_value": byteValue}).RunWith(s.db).QueryRowContext(ctx)
	var tokenID, category string
	if err := row.Scan(&tokenID, &category); err != nil {
		if err == sql.ErrNoRows {
			return vocab.Record{}, false, nil
		}
		return vocab.Record{}, false, fmt.Errorf("%w: lookup char: %v", errs.ErrStorage, err)
	}
	return vocab.Record{TokenID: tokenID, Category: category, Scope: vocab.ScopeCore}, true, nil
}

// LookupLabel resolves an exact-case proper-noun surface.
func (s *Store) LookupLabel(ctx context.Context, surface string) (vocab.Record, bool, error) {
	row := s.qb.Select("token_id", "category").From("vocab_labels").
		Where(sq.Eq{"surface_exact": surface}).RunWith(s.db).QueryRowContext(ctx)
	var tokenID, category string
	if err := row.Scan(&tokenID, &category); err != nil {
		if err == sql.ErrNoRows {
			return vocab.Record{}, false, nil
		}
		return vocab.Record{}, false, fmt.Errorf("%w: lookup label: %v", errs.ErrStorage, err)
	}
	return vocab.Record{TokenID: tokenID, Surface: surface, Category: category, Scope: vocab.ScopeLabel}, true, nil
}

// LookupWord resolves a lowercased common-word surface.
func (s *Store) LookupWord(ctx context.Context, lower string) (vocab.Record, bool, error) {
	row := s.qb.Select("token_id", "category").From("vocab_words").
		Where(sq.Eq{"surface_lower": lower}).RunWith(s.db).QueryRowContext(ctx)
	var tokenID, category string
	if err := row.Scan(&tokenID, &category); err != nil {
		if err == sql.ErrNoRows {
			return vocab.Record{}, false, nil
		}
		return vocab.Record{}, false, fmt.Errorf("%w: lookup word: %v", errs.ErrStorage, err)
	}
	return vocab.Record{TokenID: tokenID, Surface: lower, Category: category, Scope: vocab.ScopeWord}, true, nil
}

// MintVarRequest carries the context recorded alongside a newly minted
// var token, for the unknown-word audit trail (spec §4.4, var-mint).
type MintVarRequest struct {
	Surface      string
	Reason       string
	DocumentName string
	LineNumber   int
	CharOffset   int
}

// MintVar atomically allocates the next address in the var namespace
// for an unresolvable surface, following the same INSERT ... ON
// CONFLICT DO NOTHING plus atomic increment pattern the reference
// storage layer uses for PBM document addresses.
func (s *Store) MintVar(ctx context.Context, req MintVarRequest) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: begin mint tx: %v", errs.ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO var_counter (ns, p2, next_value) VALUES (?, ?, 0)
		 ON CONFLICT (ns, p2) DO NOTHING`, varNamespace, varP2); err != nil {
		return "", fmt.Errorf("%w: seed var counter: %v", errs.ErrStorage, err)
	}

	row := tx.QueryRowContext(ctx,
		`UPDATE var_counter SET next_value = next_value + 1
		 WHERE ns = ? AND p2 = ?
		 RETURNING next_value - 1`, varNamespace, varP2)
	var seq int
	if err := row.Scan(&seq); err != nil {
		return "", fmt.Errorf("%w: advance var counter: %v", errs.ErrStorage, err)
	}

	// p3 holds seq / 2500, and p4/p5 hold the two base-50 digits of
	// seq % 2500 (each in 0-49), giving 2500 * 2500 addresses. The
	// seq // 2500 / seq % 2500 split is the same one the reference storage
	// layer uses for its two-pair document addresses.
	p3, err := tokenid.EncodePair(seq / 2500)
	if err != nil {
		return "", fmt.Errorf("%w: encode var p3: %v", errs.ErrStorage, err)
	}
	p4, err := tokenid.EncodePair((seq / 50) % 50)
	if err != nil {
		return "", fmt.Errorf("%w: encode var p4: %v", errs.ErrStorage, err)
	}
	p5, err := tokenid.EncodePair(seq % 50)
	if err != nil {
		return "", fmt.Errorf("%w: encode var p5: %v", errs.ErrStorage, err)
	}
	tokenID := fmt.Sprintf("%s.%s.%s.%s.%s", varNamespace, varP2, p3, p4, p5)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO vocab_vars (token_id, surface, scope, minted_at) VALUES (?, ?, ?, ?)`,
		tokenID, req.Surface, string(vocab.ScopeVar), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return "", fmt.Errorf("%w: insert var record: %v", errs.ErrStorage, err)
	}

	logID := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO var_log (id, token_id, surface, reason, document_name, line_number, char_offset, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		logID, tokenID, req.Surface, req.Reason, req.DocumentName, req.LineNumber, req.CharOffset,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return "", fmt.Errorf("%w: insert var log: %v", errs.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: commit mint tx: %v", errs.ErrStorage, err)
	}
	return tokenID, nil
}

// ForwardStatus describes the outcome of one step of the boilerplate
// forward-walk (spec §4.4, DESIGN.md Open Question #2): a single return
// shape shared by every step regardless of match outcome.
type ForwardStatus int

const (
	ForwardNoMatch ForwardStatus = iota
	ForwardPartial
	ForwardComplete
)

// ForwardResult is the outcome of advancing the forward-walk by one
// token: either no known boilerplate sequence starts this way, the
// walk can still continue, or it terminated on a recognized token id.
type ForwardResult struct {
	Status  ForwardStatus
	TokenID string
}

// ForwardWalk advances the boilerplate-recognition walk given the
// token-id prefix seen so far (joined by "|") and the next candidate
// token id.
func (s *Store) ForwardWalk(ctx context.Context, prefix, nextToken string) (ForwardResult, error) {
	key := nextToken
	if prefix != "" {
		key = prefix + "|" + nextToken
	}
	row := s.qb.Select("is_terminal", "token_id").From("boilerplate_sequences").
		Where(sq.Eq{"prefix": key}).RunWith(s.db).QueryRowContext(ctx)
	var terminal int
	var tokenID sql.NullString
	if err := row.Scan(&terminal, &tokenID); err != nil {
		if err == sql.ErrNoRows {
			return ForwardResult{Status: ForwardNoMatch}, nil
		}
		return ForwardResult{}, fmt.Errorf("%w: forward walk: %v", errs.ErrStorage, err)
	}
	if terminal != 0 {
		return ForwardResult{Status: ForwardComplete, TokenID: tokenID.String}, nil
	}
	return ForwardResult{Status: ForwardPartial}, nil
}
