// Package pbmstore persists and reloads Pair-Bond Maps (spec §4.9): a
// prefix-tree relational schema partitioned by B-side namespace, ported
// from the reference storage.py's store_pbm/load_pbm, with the document
// namespace changed from the source's vA.* to zA.* per this repo's
// Open Question decision (see DESIGN.md).
package pbmstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/humancognome/textpbm/internal/disassemble"
	"github.com/humancognome/textpbm/internal/errs"
	"github.com/humancognome/textpbm/internal/tokenid"
)

//go:embed sql/schema/base_schema.sql
var baseSchemaSQL string

// DocumentNamespace and DocumentP2 fix the first two pairs of every
// document address (spec.md §3.2 Open Question decision #3).
const (
	DocumentNamespace = "zA"
	DocumentP2        = "AB"
)

// wordRoot, markerRoot are the shared B-side prefixes the word and
// marker bond partitions amortize away.
const (
	wordRoot   = "AB.AB"
	markerRoot = "AA.AE"
)

// DocumentMeta is the librarian-facing record attached to a document.
type DocumentMeta struct {
	Name        string
	CenturyCode string
	Category    string
	Subcategory string
	Metadata    map[string]any
}

// Document is a stored document's address plus its metadata.
type Document struct {
	DocID    int64
	TokenID  string
	Meta     DocumentMeta
	FirstFPB [2]string
}

// Store wraps the PBM relational database.
type Store struct {
	db *sql.DB
	qb sq.StatementBuilderType
}

// Open opens (creating if absent) the PBM database at path and runs its
// schema migration.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open pbm store: %v", errs.ErrStorage, err)
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

	return &Store{db: db, qb: sq.StatementBuilder.PlaceholderFormat(sq.Question)}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// StorePBM allocates a document address, inserts the document row and
// its A-side starters, and routes every bond into its partition, per
// the write protocol in spec §4.9.
func (s *Store) StorePBM(ctx context.Context, meta DocumentMeta, pbm disassemble.PBM) (Document, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Document{}, fmt.Errorf("%w: begin store tx: %v", errs.ErrStorage, err)
	}
	defer tx.Rollback()

	p4, p5, err := s.allocateAddress(ctx, tx, DocumentNamespace, DocumentP2, meta.CenturyCode)
	if err != nil {
		return Document{}, err
	}

	var metaJSON []byte
	if meta.Metadata != nil {
		metaJSON, err = json.Marshal(meta.Metadata)
		if err != nil {
			return Document{}, fmt.Errorf("%w: marshal metadata: %v", errs.ErrStorage, err)
		}
	}

	res, err := s.qb.Insert("pbm_documents").
		Columns("ns", "p2", "p3", "p4", "p5", "name", "category", "subcategory", "first_fpb_a", "first_fpb_b", "metadata").
		Values(DocumentNamespace, DocumentP2, meta.CenturyCode, p4, p5,
			meta.Name, meta.Category, meta.Subcategory, pbm.FirstFPB[0], pbm.FirstFPB[1], metaJSON).
		RunWith(tx).ExecContext(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return Document{}, fmt.Errorf("%w: %v", errs.ErrDuplicateDocumentAddress, err)
		}
		return Document{}, fmt.Errorf("%w: insert document: %v", errs.ErrStorage, err)
	}
	docID, err := res.LastInsertId()
	if err != nil {
		return Document{}, fmt.Errorf("%w: read document id: %v", errs.ErrStorage, err)
	}

	starterPKs := make(map[string]int64, len(pbm.UniqueTokens))
	for a := range uniqueASides(pbm.Bonds) {
		r, err := s.qb.Insert("pbm_starters").Columns("doc_id", "a_token_id").
			Values(docID, a).RunWith(tx).ExecContext(ctx)
		if err != nil {
			return Document{}, fmt.Errorf("%w: insert starter: %v", errs.ErrStorage, err)
		}
		pk, err := r.LastInsertId()
		if err != nil {
			return Document{}, fmt.Errorf("%w: read starter id: %v", errs.ErrStorage, err)
		}
		starterPKs[a] = pk
	}

	for _, bond := range pbm.Bonds {
		starterID := starterPKs[bond.A]
		if err := s.insertBond(ctx, tx, starterID, bond); err != nil {
			return Document{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Document{}, fmt.Errorf("%w: commit store tx: %v", errs.ErrStorage, err)
	}

	tokenID := fmt.Sprintf("%s.%s.%s.%s.%s", DocumentNamespace, DocumentP2, meta.CenturyCode, p4, p5)
	return Document{DocID: docID, TokenID: tokenID, Meta: meta, FirstFPB: pbm.FirstFPB}, nil
}

func uniqueASides(bonds []disassemble.Bond) map[string]struct{} {
	out := make(map[string]struct{}, len(bonds))
	for _, b := range bonds {
		out[b.A] = struct{}{}
	}
	return out
}

func (s *Store) allocateAddress(ctx context.Context, tx *sql.Tx, ns, p2, p3 string) (p4, p5 string, err error) {
	_, err = s.qb.Insert("pbm_counters").Columns("ns", "p2", "p3", "next_value").
		Values(ns, p2, p3, 0).
		Suffix("ON CONFLICT (ns, p2, p3) DO NOTHING").
		RunWith(tx).ExecContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%w: seed pbm counter: %v", errs.ErrStorage, err)
	}
	row := s.qb.Update("pbm_counters").
		Set("next_value", sq.Expr("next_value + 1")).
		Where(sq.Eq{"ns": ns, "p2": p2, "p3": p3}).
		Suffix("RETURNING next_value - 1").
		RunWith(tx).QueryRowContext(ctx)
	var seq int
	if err = row.Scan(&seq); err != nil {
		return "", "", fmt.Errorf("%w: advance pbm counter: %v", errs.ErrStorage, err)
	}
	p4, err = tokenid.EncodePair(seq / 2500)
	if err != nil {
		return "", "", fmt.Errorf("%w: encode document p4: %v", errs.ErrStorage, err)
	}
	p5, err = tokenid.EncodePair(seq % 2500)
	if err != nil {
		return "", "", fmt.Errorf("%w: encode document p5: %v", errs.ErrStorage, err)
	}
	return p4, p5, nil
}

// insertBond classifies bond by its B-side root prefix and inserts it
// into the matching partition, mirroring store_pbm's routing.
func (s *Store) insertBond(ctx context.Context, tx *sql.Tx, starterID int64, bond disassemble.Bond) error {
	parts := strings.Split(bond.B, ".")
	root2 := strings.Join(parts[:min(2, len(parts))], ".")

	switch {
	case root2 == wordRoot && len(parts) == 5:
		_, err := s.qb.Insert("pbm_word_bonds").Columns("starter_id", "b_p3", "b_p4", "b_p5", "count").
			Values(starterID, parts[2], parts[3], parts[4], bond.Count).
			Suffix("ON CONFLICT (starter_id, b_p3, b_p4, b_p5) DO UPDATE SET count = count + excluded.count").
			RunWith(tx).ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("%w: insert word bond: %v", errs.ErrStorage, err)
		}
	case root2 == markerRoot && len(parts) == 4:
		_, err := s.qb.Insert("pbm_marker_bonds").Columns("starter_id", "b_p3", "b_p4", "count").
			Values(starterID, parts[2], parts[3], bond.Count).
			Suffix("ON CONFLICT (starter_id, b_p3, b_p4) DO UPDATE SET count = count + excluded.count").
			RunWith(tx).ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("%w: insert marker bond: %v", errs.ErrStorage, err)
		}
	case parts[0] == "AA" && len(parts) == 5:
		_, err := s.qb.Insert("pbm_char_bonds").Columns("starter_id", "b_p2", "b_p3", "b_p4", "b_p5", "count").
			Values(starterID, parts[1], parts[2], parts[3], parts[4], bond.Count).
			Suffix("ON CONFLICT (starter_id, b_p2, b_p3, b_p4, b_p5) DO UPDATE SET count = count + excluded.count").
			RunWith(tx).ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("%w: insert char bond: %v", errs.ErrStorage, err)
		}
	default:
		// Fallback: route anything unrecognized into pbm_char_bonds
		// carrying the full decomposition, padding to 5 pairs.
		padded := make([]string, 5)
		copy(padded, parts)
		_, err := s.qb.Insert("pbm_char_bonds").Columns("starter_id", "b_p2", "b_p3", "b_p4", "b_p5", "count").
			Values(starterID, padded[1], padded[2], padded[3], padded[4], bond.Count).
			Suffix("ON CONFLICT (starter_id, b_p2, b_p3, b_p4, b_p5) DO UPDATE SET count = count + excluded.count").
			RunWith(tx).ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("%w: insert fallback bond: %v", errs.ErrStorage, err)
		}
	}
	return nil
}

// LoadPBM reconstructs a document's PBM via the three-way union read
// protocol: each partition is joined back to pbm_starters to recover
// the A-side, and the B-side Token ID string is rebuilt by
// concatenating the partition's implied root prefix with its stored
// distinguishing pairs.
func (s *Store) LoadPBM(ctx context.Context, docID int64) (disassemble.PBM, Document, error) {
	var doc Document
	var metaJSON sql.NullString
	row := s.qb.Select("id", "ns", "p2", "p3", "p4", "p5", "name", "category", "subcategory", "first_fpb_a", "first_fpb_b", "metadata").
		From("pbm_documents").Where(sq.Eq{"id": docID}).
		RunWith(s.db).QueryRowContext(ctx)
	if err := row.Scan(&doc.DocID, new(string), new(string), new(string), new(string), new(string),
		&doc.Meta.Name, &doc.Meta.Category, &doc.Meta.Subcategory,
		&doc.FirstFPB[0], &doc.FirstFPB[1], &metaJSON); err != nil {
		if err == sql.ErrNoRows {
			return disassemble.PBM{}, Document{}, errs.ErrUnknownDocument
		}
		return disassemble.PBM{}, Document{}, fmt.Errorf("%w: load document: %v", errs.ErrStorage, err)
	}
	if metaJSON.Valid && metaJSON.String != "" {
		if err := json.Unmarshal([]byte(metaJSON.String), &doc.Meta.Metadata); err != nil {
			return disassemble.PBM{}, Document{}, fmt.Errorf("%w: unmarshal metadata: %v", errs.ErrStorage, err)
		}
	}

	// The three-partition union read has no squirrel equivalent (it has
	// no UNION builder), so it stays hand-rolled.
	rows, err := s.db.QueryContext(ctx, `
		SELECT st.a_token_id, 'AB.AB.' || wb.b_p3 || '.' || wb.b_p4 || '.' || wb.b_p5, wb.count
		FROM pbm_word_bonds wb JOIN pbm_starters st ON st.id = wb.starter_id
		WHERE st.doc_id = ?
		UNION ALL
		SELECT st.a_token_id, 'AA.' || cb.b_p2 || '.' || cb.b_p3 || '.' || cb.b_p4 || '.' || cb.b_p5, cb.count
		FROM pbm_char_bonds cb JOIN pbm_starters st ON st.id = cb.starter_id
		WHERE st.doc_id = ?
		UNION ALL
		SELECT st.a_token_id, 'AA.AE.' || mb.b_p3 || '.' || mb.b_p4, mb.count
		FROM pbm_marker_bonds mb JOIN pbm_starters st ON st.id = mb.starter_id
		WHERE st.doc_id = ?`, docID, docID, docID)
	if err != nil {
		return disassemble.PBM{}, Document{}, fmt.Errorf("%w: load bonds: %v", errs.ErrStorage, err)
	}
	defer rows.Close()

	pbm := disassemble.PBM{UniqueTokens: make(map[string]struct{}), FirstFPB: doc.FirstFPB}
	for rows.Next() {
		var a, b string
		var count int
		if err := rows.Scan(&a, &b, &count); err != nil {
			return disassemble.PBM{}, Document{}, fmt.Errorf("%w: scan bond row: %v", errs.ErrStorage, err)
		}
		pbm.Bonds = append(pbm.Bonds, disassemble.Bond{A: a, B: b, Count: count})
		pbm.UniqueTokens[a] = struct{}{}
		pbm.UniqueTokens[b] = struct{}{}
		pbm.TotalPairs += count
	}
	if err := rows.Err(); err != nil {
		return disassemble.PBM{}, Document{}, fmt.Errorf("%w: iterate bonds: %v", errs.ErrStorage, err)
	}

	return pbm, doc, nil
}

// DocumentRow is one summary row of the list action's output (spec
// §6.1: doc_id, name, starters, bonds).
type DocumentRow struct {
	DocID    int64
	Name     string
	Starters int
	Bonds    int
}

// ListDocuments reports every stored document's address, name, starter
// count, and bond-row count across all three partitions.
func (s *Store) ListDocuments(ctx context.Context) ([]DocumentRow, error) {
	rows, err := s.qb.Select(
		"d.id", "d.name",
		"(SELECT COUNT(*) FROM pbm_starters st WHERE st.doc_id = d.id)",
		"(SELECT COUNT(*) FROM pbm_word_bonds wb JOIN pbm_starters st ON st.id = wb.starter_id WHERE st.doc_id = d.id) + "+
			"(SELECT COUNT(*) FROM pbm_char_bonds cb JOIN pbm_starters st ON st.id = cb.starter_id WHERE st.doc_id = d.id) + "+
			"(SELECT COUNT(*) FROM pbm_marker_bonds mb JOIN pbm_starters st ON st.id = mb.starter_id WHERE st.doc_id = d.id)",
	).From("pbm_documents d").OrderBy("d.id").RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %v", errs.ErrStorage, err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		var r DocumentRow
		if err := rows.Scan(&r.DocID, &r.Name, &r.Starters, &r.Bonds); err != nil {
			return nil, fmt.Errorf("%w: scan document row: %v", errs.ErrStorage, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate documents: %v", errs.ErrStorage, err)
	}
	return out, nil
}

// UpdateMetadata merges set into, and deletes the keys named by remove
// from, docID's metadata (spec §6.1 update_meta; bonds are immutable,
// only metadata may change after ingest). It returns how many of the
// requested removals actually matched an existing key.
func (s *Store) UpdateMetadata(ctx context.Context, docID int64, set map[string]any, remove []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin update tx: %v", errs.ErrStorage, err)
	}
	defer tx.Rollback()

	var metaJSON sql.NullString
	row := s.qb.Select("metadata").From("pbm_documents").Where(sq.Eq{"id": docID}).
		RunWith(tx).QueryRowContext(ctx)
	if err := row.Scan(&metaJSON); err != nil {
		if err == sql.ErrNoRows {
			return 0, errs.ErrUnknownDocument
		}
		return 0, fmt.Errorf("%w: load metadata: %v", errs.ErrStorage, err)
	}

	metadata := make(map[string]any)
	if metaJSON.Valid && metaJSON.String != "" {
		if err := json.Unmarshal([]byte(metaJSON.String), &metadata); err != nil {
			return 0, fmt.Errorf("%w: unmarshal metadata: %v", errs.ErrStorage, err)
		}
	}

	for k, v := range set {
		metadata[k] = v
	}
	removed := 0
	for _, k := range remove {
		if _, ok := metadata[k]; ok {
			delete(metadata, k)
			removed++
		}
	}

	newJSON, err := json.Marshal(metadata)
	if err != nil {
		return 0, fmt.Errorf("%w: marshal metadata: %v", errs.ErrStorage, err)
	}
	_, err = s.qb.Update("pbm_documents").Set("metadata", newJSON).Where(sq.Eq{"id": docID}).
		RunWith(tx).ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: write metadata: %v", errs.ErrStorage, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit update tx: %v", errs.ErrStorage, err)
	}
	return removed, nil
}
