package parser

import "strings"

// Block is one fenced ledger block inside a document. Line numbers are
// 1-indexed; Lines holds the interior lines without the fences.
type Block struct {
	Fence int // line of the opening fence
	Start int // line of the first interior line
	Lines []string
}

// ScanBlocks finds the fenced ledger blocks in a document. Only fences whose
// info string equals keyword (case-insensitive) open a block; the closing
// fence is the next ``` delimiter. Text outside such fences is never part of
// a block. An unclosed fence runs to the end of the document.
func ScanBlocks(content, keyword string) []Block {
	var blocks []Block
	var current *Block

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if current != nil {
			if strings.HasPrefix(trimmed, "```") {
				blocks = append(blocks, *current)
				current = nil
				continue
			}
			current.Lines = append(current.Lines, line)
			continue
		}

		if info, ok := strings.CutPrefix(trimmed, "```"); ok {
			if strings.EqualFold(strings.TrimSpace(info), keyword) {
				current = &Block{Fence: i + 1, Start: i + 2}
			}
		}
	}

	if current != nil {
		blocks = append(blocks, *current)
	}
	return blocks
}
