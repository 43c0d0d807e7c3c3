package glossary

import (
	"context"

	"github.com/termpipe/termpipe/internal/domain"
)

// Store is the authoritative glossary backing store. Implementations are
// assumed eventually consistent; write serialization happens in Writer,
// not in the store.
type Store interface {
	// ReadAll returns the active glossary entries in insertion order
	// together with an opaque revision token.
	ReadAll(ctx context.Context) ([]domain.GlossaryEntry, string, error)

	// AppendOrUpdate commits one entry, superseding any previous entry
	// with the same source term.
	AppendOrUpdate(ctx context.Context, entry domain.GlossaryEntry) error
}
