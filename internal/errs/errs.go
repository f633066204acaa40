// Package errs defines the stable error kinds shared across the engine.
//
// Every kind is a sentinel usable with errors.Is; call sites wrap it with
// fmt.Errorf("...: %w", kind) to attach context without losing identity.
package errs

import "errors"

var (
	// ErrBadPair is returned when a two-character pair cannot be decoded:
	// wrong length, or a character outside the 50-symbol alphabet.
	ErrBadPair = errors.New("bad pair")

	// ErrValueOutOfRange is returned when encode_pair is given a value
	// outside [0, 2499].
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrBadDepth is returned when a Token ID string decodes to fewer than
	// one or more than five pairs.
	ErrBadDepth = errors.New("bad depth")

	// ErrVocabularyMiss names a surface with no mapping at any tier. No
	// lookup in this module returns it: the cold store and resolver report
	// a miss as ok == false, and at ingest a miss triggers sic fallback.
	ErrVocabularyMiss = errors.New("vocabulary miss")

	// ErrUnknownDocument is returned when info/retrieve/bonds/update_meta
	// is given a document id absent from pbm_documents.
	ErrUnknownDocument = errors.New("unknown document")

	// ErrDuplicateDocumentAddress is returned on an address-counter race
	// or collision; the ingest that triggers it must roll back.
	ErrDuplicateDocumentAddress = errors.New("duplicate document address")

	// ErrStorage wraps any relational or KV storage failure.
	ErrStorage = errors.New("storage error")

	// ErrMalformedRequest is returned by the facade when a request is
	// missing required fields or has the wrong shape.
	ErrMalformedRequest = errors.New("malformed request")
)
