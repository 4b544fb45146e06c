package store

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/JamesCliffordSpratt/macros-sub001/parser"
)

// DefaultBlockKeyword is the fence info string that opens a ledger block.
const DefaultBlockKeyword = "macros"

// Vault is a DocumentStore over a directory tree of markdown notes. Ledger
// blocks are located by their id directives; a block without one is
// addressable by its document's base name.
type Vault struct {
	root    string
	keyword string
	logger  *log.Logger
}

// VaultOption configures a Vault.
type VaultOption func(*Vault)

// WithBlockKeyword overrides the fence keyword that marks ledger blocks.
func WithBlockKeyword(keyword string) VaultOption {
	return func(v *Vault) { v.keyword = keyword }
}

// WithVaultLogger routes per-file warnings to the given logger.
func WithVaultLogger(logger *log.Logger) VaultOption {
	return func(v *Vault) { v.logger = logger }
}

// NewVault creates a vault rooted at dir.
func NewVault(dir string, opts ...VaultOption) *Vault {
	v := &Vault{
		root:    dir,
		keyword: DefaultBlockKeyword,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Root returns the vault's root directory.
func (v *Vault) Root() string { return v.root }

// BlockKeyword returns the fence keyword that marks ledger blocks.
func (v *Vault) BlockKeyword() string { return v.keyword }

// ListDocuments walks the vault for markdown files, skipping hidden
// directories (such as an editor's own configuration tree). Paths are
// returned vault-relative and sorted for deterministic iteration.
func (v *Vault) ListDocuments(ctx context.Context) ([]string, error) {
	var docs []string
	err := filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != v.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}
		rel, err := filepath.Rel(v.root, path)
		if err != nil {
			return err
		}
		docs = append(docs, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk vault %s: %w", v.root, err)
	}
	slices.Sort(docs)
	return docs, nil
}

// ReadDocument returns a document's full content.
func (v *Vault) ReadDocument(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(v.root, path))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// WriteDocument replaces a document's full content.
func (v *Vault) WriteDocument(ctx context.Context, path string, content string) error {
	full := filepath.Join(v.root, path)
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadLedgerBlock finds the ledger block registered under the identifier and
// returns its raw interior lines. Documents that cannot be read are logged
// and skipped so one unreadable note never hides every other block.
func (v *Vault) ReadLedgerBlock(ctx context.Context, identifier string) ([]string, error) {
	_, block, err := v.findBlock(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return block.Lines, nil
}

// WriteLedgerBlock replaces the interior lines of the identifier's block,
// leaving everything else in the document untouched.
func (v *Vault) WriteLedgerBlock(ctx context.Context, identifier string, lines []string) error {
	doc, block, err := v.findBlock(ctx, identifier)
	if err != nil {
		return err
	}

	content, err := v.ReadDocument(ctx, doc)
	if err != nil {
		return err
	}

	all := strings.Split(content, "\n")
	// Block interior spans [Start-1, Start-1+len(block.Lines)) in 0-indexed
	// terms; splice the replacement lines in.
	head := all[:block.Start-1]
	tail := all[block.Start-1+len(block.Lines):]
	next := make([]string, 0, len(head)+len(lines)+len(tail))
	next = append(next, head...)
	next = append(next, lines...)
	next = append(next, tail...)

	return v.WriteDocument(ctx, doc, strings.Join(next, "\n"))
}

// findBlock locates the first block matching an identifier: a block whose id
// directive names it, or a directive-less block in a document whose base
// name equals it.
func (v *Vault) findBlock(ctx context.Context, identifier string) (string, parser.Block, error) {
	docs, err := v.ListDocuments(ctx)
	if err != nil {
		return "", parser.Block{}, err
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return "", parser.Block{}, err
		}

		content, err := v.ReadDocument(ctx, doc)
		if err != nil {
			v.logger.Warn("skipping unreadable document", "path", doc, "err", err)
			continue
		}

		for _, block := range parser.ScanBlocks(content, v.keyword) {
			if blockMatches(block, doc, identifier) {
				return doc, block, nil
			}
		}
	}

	return "", parser.Block{}, &BlockNotFoundError{Identifier: identifier}
}

func blockMatches(block parser.Block, doc, identifier string) bool {
	declared := false
	for _, line := range block.Lines {
		directive, ok := parser.ParseLine(line).(*parser.IDDirective)
		if !ok {
			continue
		}
		declared = true
		for _, id := range directive.IDs {
			if strings.EqualFold(id, identifier) {
				return true
			}
		}
	}
	if declared {
		return false
	}

	base := strings.TrimSuffix(filepath.Base(doc), filepath.Ext(doc))
	return strings.EqualFold(base, identifier)
}
