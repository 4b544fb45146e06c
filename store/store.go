// Package store defines the narrow interfaces through which the macro ledger
// core reaches the documents holding fenced ledger blocks, the food content
// store, and the meal template store, together with filesystem-backed
// implementations for a vault of markdown notes.
package store

import (
	"context"
	"fmt"

	"github.com/JamesCliffordSpratt/macros-sub001/macro"
)

// DocumentStore reads and writes the documents that carry fenced ledger
// blocks. Paths are store-relative.
type DocumentStore interface {
	// ReadLedgerBlock returns the raw interior lines of the ledger block
	// registered under the given identifier.
	ReadLedgerBlock(ctx context.Context, identifier string) ([]string, error)

	// WriteLedgerBlock replaces the interior lines of the identifier's block.
	WriteLedgerBlock(ctx context.Context, identifier string, lines []string) error

	// ListDocuments enumerates every document in the store.
	ListDocuments(ctx context.Context) ([]string, error)

	// ReadDocument returns a document's full content.
	ReadDocument(ctx context.Context, path string) (string, error)

	// WriteDocument replaces a document's full content.
	WriteDocument(ctx context.Context, path string, content string) error
}

// FoodStore lists canonical food records and finds candidates by name. The
// resolver's exact-then-partial policy runs on top of FindByName.
type FoodStore interface {
	List(ctx context.Context) ([]*macro.Record, error)
	FindByName(ctx context.Context, query string) ([]*macro.Record, error)
}

// TemplateStore looks up named meal templates.
type TemplateStore interface {
	Template(ctx context.Context, name string) (items []string, ok bool)
}

// BlockNotFoundError reports that no document carries a ledger block for an
// identifier.
type BlockNotFoundError struct {
	Identifier string
}

func (e *BlockNotFoundError) Error() string {
	return fmt.Sprintf("no ledger block found for identifier %q", e.Identifier)
}
