// Package engine is the facade that wires the tokenizer/storage
// pipeline together: scanner → resolver → disassembler → PBM storage
// on ingest, and PBM storage → reassembler → spacing on retrieve (spec
// §2, §6.1). It owns the three cache tiers and the two SQLite stores
// and exposes one method per external action; cmd/pbmctl is a thin
// Cobra shell over these methods and nothing else.
package engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/humancognome/textpbm/internal/bytetable"
	"github.com/humancognome/textpbm/internal/coldstore"
	"github.com/humancognome/textpbm/internal/config"
	"github.com/humancognome/textpbm/internal/disassemble"
	"github.com/humancognome/textpbm/internal/errs"
	"github.com/humancognome/textpbm/internal/hotcache"
	"github.com/humancognome/textpbm/internal/kvcache"
	"github.com/humancognome/textpbm/internal/pbmstore"
	"github.com/humancognome/textpbm/internal/reassemble"
	"github.com/humancognome/textpbm/internal/resolver"
	"github.com/humancognome/textpbm/internal/scanner"
	"github.com/humancognome/textpbm/internal/spacing"
	"github.com/humancognome/textpbm/internal/structure"
	"github.com/humancognome/textpbm/internal/tokenid"
	"github.com/humancognome/textpbm/internal/validate"
	"github.com/humancognome/textpbm/internal/vocab"
)

// Engine holds every tier of the cache-miss resolver plus the PBM store
// and serves the facade actions in spec §6.1. The zero value is not
// usable; construct one with New.
type Engine struct {
	cfg  config.Config
	log  zerolog.Logger
	hot  *hotcache.Cache
	kv   *kvcache.Store
	cold *coldstore.Store
	pbm  *pbmstore.Store
}

// New opens the cold, KV, and PBM stores named in cfg, seeds the hot
// cache with the single-byte tokens that have a character of their own
// in bytetable (byte 0 plus every byte whose ASCII rune is non-zero;
// the other byte values are not seeded) (spec §4.3's "loaded at
// engine start from cold storage", here derived deterministically
// instead of requiring a pre-populated byte table), and returns a ready
// Engine. Callers must call Close when done.
func New(cfg config.Config) (*Engine, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	cold, err := coldstore.Open(cfg.ColdStorePath)
	if err != nil {
		return nil, err
	}
	kv, err := kvcache.OpenWithLRUSize(cfg.KVCachePath, cfg.LRUSize)
	if err != nil {
		cold.Close()
		return nil, err
	}
	pbm, err := pbmstore.Open(cfg.PBMStorePath)
	if err != nil {
		cold.Close()
		kv.Close()
		return nil, err
	}

	hot := hotcache.New()
	seedByteVocabulary(hot)
	seedMarkers(hot)

	e := &Engine{cfg: cfg, log: log, hot: hot, kv: kv, cold: cold, pbm: pbm}
	return e, nil
}

// Close releases the underlying PBM, KV, and cold stores.
func (e *Engine) Close() error {
	var firstErr error
	if err := e.pbm.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.kv.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.cold.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// seedByteVocabulary registers every byte value's token under the
// single-byte root AA.AA.AA.AA.*, encoding the byte value itself as
// the final pair — the scheme the curated punctuation/structural token
// ids in internal/resolver and internal/vocab already follow (e.g. "."
// at byte 46 encodes to pair "Aw", matching resolver's PUNCTUATION_MAP
// entry for '.').
func seedByteVocabulary(hot *hotcache.Cache) {
	for v := 0; v < len(bytetable.Table); v++ {
		entry := bytetable.Table[v]
		if entry.ASCII == 0 && v != 0 {
			// Non-printable/continuation bytes share the zero-rune
			// placeholder; only byte 0 itself owns that char-map slot.
			// These bytes are still reachable through their Token ID
			// directly (sic fallback), just not via the rune lookup.
			continue
		}
		pair, err := tokenid.EncodePair(v)
		if err != nil {
			continue
		}
		tokenID := "AA.AA.AA.AA." + pair
		hot.PutChar(entry.ASCII, tokenID, categoryName(entry.Category))
	}
}

func categoryName(c bytetable.Category) string {
	return fmt.Sprintf("byte_%s", c)
}

// seedMarkers registers every structural/typographic marker token id
// (spec §4.6) with an empty surface and the anchor category, matching
// hotcache.New's registration of the stream anchors themselves: markers
// carry no literal text of their own and must never receive spacing.
// line_break is the one exception — it stands in for the newline
// between a title block's surviving lines, so it renders as "\n" and is
// registered as structural whitespace instead (see internal/spacing).
func seedMarkers(hot *hotcache.Cache) {
	markers := []string{
		vocab.MarkerDocumentStart,
		vocab.MarkerDocumentEnd,
		vocab.MarkerPartBreak,
		vocab.MarkerChapterBreak,
		vocab.MarkerSectionBreak,
		vocab.MarkerParagraphStart,
		vocab.MarkerParagraphEnd,
		vocab.MarkerTitleStart,
		vocab.MarkerTitleEnd,
		vocab.MarkerItalicStart,
		vocab.MarkerItalicEnd,
		vocab.MarkerAllCapsStart,
		vocab.MarkerAllCapsEnd,
		vocab.MarkerSicStart,
		vocab.MarkerSicEnd,
		vocab.MarkerTBD,
	}
	for _, id := range markers {
		hot.PutMarker(id, "", vocab.AnchorCategory)
	}
	hot.PutMarker(vocab.MarkerLineBreak, "\n", "structural_whitespace")
}

// HealthResult is the output of the health action.
type HealthResult struct {
	Ready  bool
	Words  int
	Labels int
	Chars  int
}

// Health reports readiness plus vocabulary tier counts.
func (e *Engine) Health(ctx context.Context) (HealthResult, error) {
	words, labels, chars, err := e.cold.Counts(ctx)
	if err != nil {
		return HealthResult{}, err
	}
	return HealthResult{Ready: true, Words: words, Labels: labels, Chars: chars}, nil
}

// TokenizeResult is the output of the tokenize action: statistics only,
// no persistence.
type TokenizeResult struct {
	Tokens        int
	Unique        int
	Bonds         int
	TotalPairs    int
	OriginalBytes int
	Elapsed       time.Duration
}

// Tokenize runs the scanner/resolver/disassembler pipeline over text
// and returns pair statistics without persisting anything.
func (e *Engine) Tokenize(ctx context.Context, text string) (TokenizeResult, error) {
	start := time.Now()
	ids, _, err := e.tokenizeToIDs(ctx, text, "")
	if err != nil {
		return TokenizeResult{}, err
	}
	pbm := disassemble.Disassemble(ids)
	return TokenizeResult{
		Tokens:        len(ids),
		Unique:        len(pbm.UniqueTokens),
		Bonds:         len(pbm.Bonds),
		TotalPairs:    pbm.TotalPairs,
		OriginalBytes: len(text),
		Elapsed:       time.Since(start),
	}, nil
}

// IngestRequest carries the inputs to the ingest action.
type IngestRequest struct {
	Text        string
	Name        string
	Century     string
	Category    string
	Subcategory string
	Metadata    map[string]any
}

// IngestResult is the output of the ingest action.
type IngestResult struct {
	DocID          int64
	DocTokenID     string
	Tokens         int
	Unique         int
	Slots          int
	Elapsed        time.Duration
	MetaKnown      int
	MetaUnreviewed int
}

// Ingest tokenizes text, disassembles the resulting stream, and
// persists it under a freshly allocated document address (spec's
// ingest control flow: text → blocks → raw tokens → Token IDs →
// prepend stream-start anchor → multiset → persist).
func (e *Engine) Ingest(ctx context.Context, req IngestRequest) (IngestResult, error) {
	start := time.Now()
	century := req.Century
	if century == "" {
		century = e.cfg.DefaultCentury
	}

	ids, unknownCount, err := e.tokenizeToIDs(ctx, req.Text, req.Name)
	if err != nil {
		return IngestResult{}, err
	}

	pbm := disassemble.Disassemble(ids)
	if mismatches := validate.Disassembly(ids, pbm); len(mismatches) > 0 {
		return IngestResult{}, fmt.Errorf("%w: disassembly re-check found %d mismatches", errs.ErrStorage, len(mismatches))
	}

	doc, err := e.pbm.StorePBM(ctx, pbmstore.DocumentMeta{
		Name:        req.Name,
		CenturyCode: century,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Metadata:    req.Metadata,
	}, pbm)
	if err != nil {
		e.log.Warn().Err(err).Str("action", "ingest").Str("name", req.Name).Msg("store pbm failed")
		return IngestResult{}, err
	}

	loaded, _, err := e.pbm.LoadPBM(ctx, doc.DocID)
	if err != nil {
		return IngestResult{}, fmt.Errorf("%w: db round-trip reload failed: %v", errs.ErrStorage, err)
	}
	if mismatches := validate.DBRoundtrip(pbm, loaded); len(mismatches) > 0 {
		return IngestResult{}, fmt.Errorf("%w: db round-trip check found %d mismatches", errs.ErrStorage, len(mismatches))
	}

	reconstructed := spacing.Render(reassemble.Sequence(loaded), &vocabularyView{e: e, ctx: ctx})
	if !validate.WordSequenceMatches(req.Text, reconstructed) {
		return IngestResult{}, fmt.Errorf("%w: reconstructed text does not match ingested text", errs.ErrStorage)
	}

	return IngestResult{
		DocID:          doc.DocID,
		DocTokenID:     doc.TokenID,
		Tokens:         len(ids),
		Unique:         len(pbm.UniqueTokens),
		Slots:          len(pbm.Bonds),
		Elapsed:        time.Since(start),
		MetaKnown:      len(req.Metadata),
		MetaUnreviewed: unknownCount,
	}, nil
}

// DocumentSummary is one row of the list action's output.
type DocumentSummary struct {
	DocID    int64
	Name     string
	Starters int
	Bonds    int
}

// List reports every stored document's address, name, and bond-table
// sizes.
func (e *Engine) List(ctx context.Context) ([]DocumentSummary, error) {
	rows, err := e.pbm.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentSummary, len(rows))
	for i, r := range rows {
		out[i] = DocumentSummary{DocID: r.DocID, Name: r.Name, Starters: r.Starters, Bonds: r.Bonds}
	}
	return out, nil
}

// Info returns full document detail for docID.
func (e *Engine) Info(ctx context.Context, docID int64) (pbmstore.Document, disassemble.PBM, error) {
	pbm, doc, err := e.pbm.LoadPBM(ctx, docID)
	if err != nil {
		return pbmstore.Document{}, disassemble.PBM{}, err
	}
	return doc, pbm, nil
}

// RetrieveResult is the output of the retrieve action.
type RetrieveResult struct {
	Text    string
	Tokens  int
	LoadMS  time.Duration
	Elapsed time.Duration
}

// Retrieve loads docID's PBM, walks it greedily back into a Token ID
// sequence, and renders it to text via the spacing rule table.
func (e *Engine) Retrieve(ctx context.Context, docID int64) (RetrieveResult, error) {
	start := time.Now()
	loadStart := time.Now()
	pbm, _, err := e.pbm.LoadPBM(ctx, docID)
	if err != nil {
		return RetrieveResult{}, err
	}
	loadElapsed := time.Since(loadStart)

	sequence := reassemble.Sequence(pbm)
	text := spacing.Render(sequence, &vocabularyView{e: e, ctx: ctx})

	return RetrieveResult{
		Text:    text,
		Tokens:  len(sequence),
		LoadMS:  loadElapsed,
		Elapsed: time.Since(start),
	}, nil
}

// BondEntry is one row of the bonds action's output.
type BondEntry struct {
	Token   string
	Surface string
	Count   int
}

// Bonds reports the bonds of docID whose A-side is token, or every bond
// of the document when token is empty; each entry gives the B-side
// token, its surface, and the count. Bonds are listed one per (A, B)
// pair and are not grouped or ranked by starter.
func (e *Engine) Bonds(ctx context.Context, docID int64, token string) ([]BondEntry, error) {
	pbm, _, err := e.pbm.LoadPBM(ctx, docID)
	if err != nil {
		return nil, err
	}
	var out []BondEntry
	for _, b := range pbm.Bonds {
		if token != "" && b.A != token {
			continue
		}
		out = append(out, BondEntry{Token: b.B, Surface: e.hot.Surface(b.B), Count: b.Count})
	}
	return out, nil
}

// UpdateMetaResult is the output of the update_meta action.
type UpdateMetaResult struct {
	FieldsSet     int
	FieldsRemoved int
}

// UpdateMeta merges set into, and deletes remove from, docID's mutable
// metadata. Bonds are immutable; only metadata may change after ingest.
func (e *Engine) UpdateMeta(ctx context.Context, docID int64, set map[string]any, remove []string) (UpdateMetaResult, error) {
	n, err := e.pbm.UpdateMetadata(ctx, docID, set, remove)
	if err != nil {
		return UpdateMetaResult{}, err
	}
	return UpdateMetaResult{FieldsSet: len(set), FieldsRemoved: n}, nil
}

// tokenizeToIDs runs the full text → Token ID pipeline: structure
// detection, scanning, resolution, and stream/document-anchor
// bracketing. The stream anchors (vocab.StreamStart/StreamEnd) mark the
// disassembler's pair-stream boundary; the document markers nested
// inside them (vocab.MarkerDocumentStart/MarkerDocumentEnd) mark the
// content itself, per spec §4.7. It returns the bracketed id sequence
// and the count of surfaces that hit the sic/unknown fallback.
func (e *Engine) tokenizeToIDs(ctx context.Context, text, docName string) ([]string, int, error) {
	lookup := &vocabularyLookup{e: e, ctx: ctx, docName: docName}
	res := resolver.New(lookup, lookup)

	ids := make([]string, 0, len(text)/4+2)
	ids = append(ids, vocab.StreamStart, vocab.MarkerDocumentStart)

	for _, block := range structure.Split(text) {
		if structure.IsStandalone(block.Kind) {
			ids = append(ids, structure.StandaloneMarker(block.Kind))
			ids = append(ids, resolveLines(res, block)...)
			continue
		}
		start, end := structure.WrapMarkers(block.Kind)
		ids = append(ids, start)
		ids = append(ids, resolveLines(res, block)...)
		ids = append(ids, end)
	}

	ids = append(ids, vocab.MarkerDocumentEnd, vocab.StreamEnd)
	return ids, lookup.unknownCount, nil
}

// resolveLines scans and resolves every line of a block in order,
// shared by both the standalone-heading and wrapped-block branches of
// tokenizeToIDs. Title blocks are multi-line by construction (see
// structure.classify); a line-break marker separates their lines so
// reassembly can tell where one physical line ended and the next began.
func resolveLines(res *resolver.Resolver, block structure.Block) []string {
	var ids []string
	for i, line := range block.Lines {
		if i > 0 && block.Kind == structure.Title {
			ids = append(ids, vocab.MarkerLineBreak)
		}
		for _, raw := range scanner.Scan(line) {
			for _, rt := range res.Resolve(raw) {
				ids = append(ids, rt.TokenID)
			}
		}
	}
	return ids
}

// vocabularyLookup adapts the Engine's three cache tiers to the
// resolver.WordLookup/UnknownSink interfaces, populating faster tiers
// on a slower-tier hit.
type vocabularyLookup struct {
	e            *Engine
	ctx          context.Context
	docName      string
	unknownCount int
}

func (v *vocabularyLookup) LookupExact(text string) (string, bool) {
	if id, ok := v.e.hot.LookupExact(text); ok {
		return id, true
	}
	if id, ok := v.e.kv.GetOK(kvcache.BucketLabelToToken, text); ok {
		v.e.hot.PutLabel(text, id, "label")
		return id, true
	}
	rec, ok, err := v.e.cold.LookupLabel(v.ctx, text)
	if err != nil || !ok {
		return "", false
	}
	v.e.hot.PutLabel(text, rec.TokenID, rec.Category)
	_ = v.e.kv.Put(kvcache.BucketLabelToToken, text, rec.TokenID)
	return rec.TokenID, true
}

func (v *vocabularyLookup) LookupLower(lower string) (string, bool) {
	if id, ok := v.e.hot.LookupLower(lower); ok {
		return id, true
	}
	if id, ok := v.e.kv.GetOK(kvcache.BucketWordToToken, lower); ok {
		v.e.hot.PutWord(lower, id, "word")
		return id, true
	}
	rec, ok, err := v.e.cold.LookupWord(v.ctx, lower)
	if err != nil || !ok {
		return "", false
	}
	v.e.hot.PutWord(lower, rec.TokenID, rec.Category)
	_ = v.e.kv.Put(kvcache.BucketWordToToken, lower, rec.TokenID)
	return rec.TokenID, true
}

func (v *vocabularyLookup) LookupChar(ch rune) (string, bool) {
	return v.e.hot.LookupChar(ch)
}

func (v *vocabularyLookup) RecordUnknown(text string, line, offset int) {
	v.unknownCount++
	v.e.log.Warn().Str("surface", text).Str("doc", v.docName).Int("line", line).Int("offset", offset).Msg("unknown word")
}

func (v *vocabularyLookup) RecordUnknownChar(ch rune) {
	v.unknownCount++
	v.e.log.Warn().Str("char", string(ch)).Msg("unknown char")
}

// vocabularyView adapts Engine to spacing.Vocabulary for retrieval.
type vocabularyView struct {
	e   *Engine
	ctx context.Context
}

func (v *vocabularyView) Surface(tokenID string) string  { return v.e.hot.Surface(tokenID) }
func (v *vocabularyView) Category(tokenID string) string { return v.e.hot.Category(tokenID) }
