package doctree

import "strings"

// FixLines corrects the line numbers of inline nodes.
//
// Parsers attribute a block's start line to every inline node inside it.
// For each block of the given kinds (paragraphs when none are given) FixLines
// walks the block's descendants in order, counting newlines in text leaves,
// and gives every descendant the block line plus the newlines seen before it.
func FixLines(root *Node, blockKinds ...string) {
	if len(blockKinds) == 0 {
		blockKinds = []string{KindParagraph}
	}
	for block := range root.FindAll(blockKinds...) {
		if block.Line == 0 {
			continue
		}
		newlines := 0
		for node := range block.All() {
			if node == block {
				continue
			}
			node.Line = block.Line + newlines
			if node.IsText() {
				newlines += strings.Count(node.Text, "\n")
			}
		}
	}
}
