// Package rename finds and rewrites ledger-block references to a food name
// across every document in a store. The scan phase is pure and produces a
// change-set for user confirmation; the apply phase rewrites only the
// matched key segments, optionally after writing a dated backup of each
// affected file.
package rename

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/JamesCliffordSpratt/macros-sub001/macro"
	"github.com/JamesCliffordSpratt/macros-sub001/parser"
	"github.com/JamesCliffordSpratt/macros-sub001/store"
)

// Options configures a rename operation.
type Options struct {
	// CaseSensitive requires the key segment to match the old name exactly;
	// otherwise matching is case-folded.
	CaseSensitive bool

	// Backup copies each file's original content aside before rewriting it.
	Backup bool

	// BlockKeyword is the fence info string marking ledger blocks. Empty
	// selects the default.
	BlockKeyword string

	// Logger receives per-file diagnostics during apply. Nil selects the
	// default logger.
	Logger *log.Logger
}

func (o Options) keyword() string {
	if o.BlockKeyword == "" {
		return store.DefaultBlockKeyword
	}
	return o.BlockKeyword
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

// Match is one rewritable line inside a fenced ledger block.
type Match struct {
	Line   int // 1-indexed line number in the document
	Before string
	After  string
}

// AffectedFile is the change-set for one document.
type AffectedFile struct {
	Path    string
	Matches []Match
}

// ConflictError reports a new name that would corrupt the grammar or
// collide with an existing record. It blocks the operation outright, before
// any scan or apply work begins.
type ConflictError struct {
	Name   string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot rename to %q: %s", e.Name, e.Reason)
}

// Validate rejects a new food name that contains a reserved delimiter or
// collides with an existing food record.
func Validate(newName string, foods []*macro.Record) error {
	trimmed := strings.TrimSpace(newName)
	if trimmed == "" {
		return &ConflictError{Name: newName, Reason: "name is empty"}
	}
	if strings.Contains(trimmed, ":") {
		return &ConflictError{Name: newName, Reason: "name contains the reserved delimiter ':'"}
	}
	for _, rec := range foods {
		if strings.EqualFold(rec.Name, trimmed) {
			return &ConflictError{Name: newName, Reason: fmt.Sprintf("a food record named %q already exists", rec.Name)}
		}
	}
	return nil
}

// Scan walks every document for ledger-block lines whose food key equals
// oldName and returns the change-set, file by file. Lines outside fenced
// ledger blocks are never reported, even when they contain the name
// textually. Scan performs no mutation.
func Scan(ctx context.Context, docs store.DocumentStore, oldName, newName string, opts Options) ([]AffectedFile, error) {
	paths, err := docs.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	var affected []AffectedFile
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := docs.ReadDocument(ctx, path)
		if err != nil {
			opts.logger().Warn("skipping unreadable document", "path", path, "err", err)
			continue
		}

		matches := scanContent(content, oldName, newName, opts)
		if len(matches) > 0 {
			affected = append(affected, AffectedFile{Path: path, Matches: matches})
		}
	}
	return affected, nil
}

// scanContent finds the rewritable lines of a single document.
func scanContent(content, oldName, newName string, opts Options) []Match {
	lines := strings.Split(content, "\n")

	var matches []Match
	for _, block := range parser.ScanBlocks(content, opts.keyword()) {
		for i, line := range block.Lines {
			prefix, key, rest, ok := parser.SplitFoodKey(line)
			if !ok || !keyEquals(key, oldName, opts.CaseSensitive) {
				continue
			}
			lineNo := block.Start + i
			matches = append(matches, Match{
				Line:   lineNo,
				Before: lines[lineNo-1],
				After:  prefix + newName + rest,
			})
		}
	}
	return matches
}

func keyEquals(key, name string, caseSensitive bool) bool {
	if caseSensitive {
		return key == name
	}
	return strings.EqualFold(key, name)
}
