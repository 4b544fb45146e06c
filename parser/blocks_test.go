package parser

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestScanBlocks(t *testing.T) {
	doc := "# Monday\n" +
		"Apple is mentioned in prose here.\n" +
		"```macros\n" +
		"id:2024-05-01\n" +
		"- Apple:100g\n" +
		"```\n" +
		"```js\n" +
		"let x = 1;\n" +
		"```\n" +
		"```macros\n" +
		"Banana:50g\n" +
		"```\n"

	blocks := ScanBlocks(doc, "macros")
	assert.Equal(t, 2, len(blocks))

	assert.Equal(t, 3, blocks[0].Fence)
	assert.Equal(t, 4, blocks[0].Start)
	assert.Equal(t, []string{"id:2024-05-01", "- Apple:100g"}, blocks[0].Lines)

	assert.Equal(t, []string{"Banana:50g"}, blocks[1].Lines)
}

func TestScanBlocksKeywordIsCaseInsensitive(t *testing.T) {
	blocks := ScanBlocks("```MACROS\nApple\n```\n", "macros")
	assert.Equal(t, 1, len(blocks))
	assert.Equal(t, []string{"Apple"}, blocks[0].Lines)
}

func TestScanBlocksIgnoresOtherFences(t *testing.T) {
	blocks := ScanBlocks("```\nApple\n```\n", "macros")
	assert.Equal(t, 0, len(blocks))
}

func TestScanBlocksUnclosedFenceRunsToEnd(t *testing.T) {
	blocks := ScanBlocks("```macros\nApple\nBanana", "macros")
	assert.Equal(t, 1, len(blocks))
	assert.Equal(t, []string{"Apple", "Banana"}, blocks[0].Lines)
}
