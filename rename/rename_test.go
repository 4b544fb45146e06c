package rename

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/JamesCliffordSpratt/macros-sub001/macro"
	"github.com/JamesCliffordSpratt/macros-sub001/store"
)

const fencedDoc = `# Monday

Apple makes a fine snack, as prose goes.

` + "```macros" + `
id:2024-05-01
- Apple:100g // morning snack
Apple
` + "```" + `

Apple again, outside any fence.
`

func newVault(t *testing.T, files map[string]string) *store.Vault {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		full := filepath.Join(root, name)
		assert.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		assert.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return store.NewVault(root, store.WithVaultLogger(log.New(io.Discard)))
}

func quietOpts() Options {
	return Options{Logger: log.New(io.Discard)}
}

func TestScanReportsOnlyFencedMatches(t *testing.T) {
	vault := newVault(t, map[string]string{"monday.md": fencedDoc})

	affected, err := Scan(context.Background(), vault, "Apple", "Apple (Gala)", quietOpts())
	assert.NoError(t, err)
	assert.Equal(t, 1, len(affected))
	assert.Equal(t, "monday.md", affected[0].Path)

	// Two fenced references; the prose mentions are never touched.
	assert.Equal(t, 2, len(affected[0].Matches))
	assert.Equal(t, "- Apple:100g // morning snack", affected[0].Matches[0].Before)
	assert.Equal(t, "- Apple (Gala):100g // morning snack", affected[0].Matches[0].After)
	assert.Equal(t, "Apple", affected[0].Matches[1].Before)
	assert.Equal(t, "Apple (Gala)", affected[0].Matches[1].After)
}

func TestScanMatchesWholeKeyOnly(t *testing.T) {
	vault := newVault(t, map[string]string{
		"doc.md": "```macros\n- Apple Juice:250g\n```\n",
	})

	affected, err := Scan(context.Background(), vault, "Apple", "Pear", quietOpts())
	assert.NoError(t, err)
	assert.Equal(t, 0, len(affected))
}

func TestScanCaseSensitivity(t *testing.T) {
	vault := newVault(t, map[string]string{
		"doc.md": "```macros\n- apple:100g\n```\n",
	})

	insensitive, err := Scan(context.Background(), vault, "Apple", "Pear", quietOpts())
	assert.NoError(t, err)
	assert.Equal(t, 1, len(insensitive))

	opts := quietOpts()
	opts.CaseSensitive = true
	sensitive, err := Scan(context.Background(), vault, "Apple", "Pear", opts)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(sensitive))
}

func TestScanIgnoresMealHeadersAndDirectives(t *testing.T) {
	vault := newVault(t, map[string]string{
		"doc.md": "```macros\nmeal:Apple\nid:Apple\n// Apple\n```\n",
	})

	affected, err := Scan(context.Background(), vault, "Apple", "Pear", quietOpts())
	assert.NoError(t, err)
	assert.Equal(t, 0, len(affected))
}

func TestValidate(t *testing.T) {
	foods := []*macro.Record{{Name: "Apple", ServingGrams: decimal.NewFromInt(100)}}

	assert.NoError(t, Validate("Apple (Gala)", foods))

	err := Validate("Gala:Apple", foods)
	assert.Error(t, err)

	err = Validate("apple", foods)
	assert.Error(t, err)

	err = Validate("  ", foods)
	assert.Error(t, err)
}

func TestApplyRewritesMatchedSegmentsOnly(t *testing.T) {
	vault := newVault(t, map[string]string{"monday.md": fencedDoc})

	affected, err := Scan(context.Background(), vault, "Apple", "Apple (Gala)", quietOpts())
	assert.NoError(t, err)

	changed, err := Apply(context.Background(), vault, affected, "Apple", "Apple (Gala)", quietOpts())
	assert.NoError(t, err)
	assert.Equal(t, 1, changed)

	content, err := vault.ReadDocument(context.Background(), "monday.md")
	assert.NoError(t, err)
	assert.True(t, strings.Contains(content, "- Apple (Gala):100g // morning snack"))
	// Prose outside the fence is untouched.
	assert.True(t, strings.Contains(content, "Apple makes a fine snack"))
	assert.True(t, strings.Contains(content, "Apple again, outside any fence."))
}

func TestApplyWritesBackupFirst(t *testing.T) {
	vault := newVault(t, map[string]string{"monday.md": fencedDoc})

	affected, err := Scan(context.Background(), vault, "Apple", "Pear", quietOpts())
	assert.NoError(t, err)

	opts := quietOpts()
	opts.Backup = true
	changed, err := Apply(context.Background(), vault, affected, "Apple", "Pear", opts)
	assert.NoError(t, err)
	assert.Equal(t, 1, changed)

	entries, err := os.ReadDir(vault.Root())
	assert.NoError(t, err)

	var backup string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".bak") {
			backup = e.Name()
		}
	}
	assert.NotEqual(t, "", backup)

	data, err := os.ReadFile(filepath.Join(vault.Root(), backup))
	assert.NoError(t, err)
	assert.Equal(t, fencedDoc, string(data))
}

// failingRewriter refuses backup writes for one path prefix.
type failingRewriter struct {
	DocumentRewriter
	failBackupFor string
}

func (f *failingRewriter) WriteDocument(ctx context.Context, path, content string) error {
	if strings.HasPrefix(path, f.failBackupFor) && strings.HasSuffix(path, ".bak") {
		return fmt.Errorf("disk full")
	}
	return f.DocumentRewriter.WriteDocument(ctx, path, content)
}

func TestApplyBackupFailureSkipsFileOnly(t *testing.T) {
	vault := newVault(t, map[string]string{
		"one.md": "```macros\n- Apple:100g\n```\n",
		"two.md": "```macros\n- Apple:50g\n```\n",
	})

	affected, err := Scan(context.Background(), vault, "Apple", "Pear", quietOpts())
	assert.NoError(t, err)
	assert.Equal(t, 2, len(affected))

	opts := quietOpts()
	opts.Backup = true
	rewriter := &failingRewriter{DocumentRewriter: vault, failBackupFor: "one.md"}
	changed, err := Apply(context.Background(), rewriter, affected, "Apple", "Pear", opts)
	assert.NoError(t, err)
	assert.Equal(t, 1, changed)

	one, _ := vault.ReadDocument(context.Background(), "one.md")
	two, _ := vault.ReadDocument(context.Background(), "two.md")
	assert.True(t, strings.Contains(one, "Apple:100g"), "one.md must be untouched")
	assert.True(t, strings.Contains(two, "Pear:50g"), "two.md must be rewritten")
}
