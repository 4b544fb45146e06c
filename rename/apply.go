package rename

import (
	"context"
	"strings"
	"time"
)

// Apply rewrites the selected files' matched key segments from oldName to
// newName. Each file is re-scanned at apply time so a document edited after
// the confirmation dialog never gets a stale rewrite. Per-file failures are
// logged and skipped; one bad file never aborts the rest of the batch.
//
// With Options.Backup set, the file's original content is copied to a dated
// sibling ("note.md.20240523-101500.bak") and the copy must succeed before
// the rewrite begins; a failed backup skips that file only.
//
// Apply returns the number of files actually rewritten.
func Apply(ctx context.Context, docs DocumentRewriter, files []AffectedFile, oldName, newName string, opts Options) (int, error) {
	logger := opts.logger()
	stamp := time.Now().Format("20060102-150405")

	changed := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return changed, err
		}

		content, err := docs.ReadDocument(ctx, file.Path)
		if err != nil {
			logger.Error("cannot read file; skipping", "path", file.Path, "err", err)
			continue
		}

		matches := scanContent(content, oldName, newName, opts)
		if len(matches) == 0 {
			continue
		}

		if opts.Backup {
			backupPath := file.Path + "." + stamp + ".bak"
			if err := docs.WriteDocument(ctx, backupPath, content); err != nil {
				logger.Error("backup failed; skipping file", "path", file.Path, "err", err)
				continue
			}
		}

		lines := strings.Split(content, "\n")
		for _, m := range matches {
			lines[m.Line-1] = m.After
		}

		if err := docs.WriteDocument(ctx, file.Path, strings.Join(lines, "\n")); err != nil {
			logger.Error("rewrite failed", "path", file.Path, "err", err)
			continue
		}
		changed++
	}

	return changed, nil
}

// DocumentRewriter is the slice of the document store Apply needs.
type DocumentRewriter interface {
	ReadDocument(ctx context.Context, path string) (string, error)
	WriteDocument(ctx context.Context, path string, content string) error
}
