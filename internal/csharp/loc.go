package csharp

import (
	"bytes"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// countLOC implements the spec §4.6 line-of-code rule: a line counts
// unless it is blank or fully covered by comment trivia.
func countLOC(root *sitter.Node, content []byte) int {
	lines := splitLinesWithOffsets(content)
	commentSpans := collectCommentSpans(root)

	count := 0
	for _, line := range lines {
		trimmed := bytes.TrimSpace(line.text)
		if len(trimmed) == 0 {
			continue
		}
		if lineFullyCommented(line, commentSpans, trimmed) {
			continue
		}
		count++
	}
	return count
}

type lineSpan struct {
	text        []byte
	startByte   uint32
	endByte     uint32
}

func splitLinesWithOffsets(content []byte) []lineSpan {
	var lines []lineSpan
	start := 0
	for i, b := range content {
		if b == '\n' {
			lines = append(lines, lineSpan{
				text:      content[start:i],
				startByte: uint32(start),
				endByte:   uint32(i),
			})
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, lineSpan{
			text:      content[start:],
			startByte: uint32(start),
			endByte:   uint32(len(content)),
		})
	}
	return lines
}

type byteSpan struct {
	start, end uint32
}

func collectCommentSpans(root *sitter.Node) []byteSpan {
	var spans []byteSpan
	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "comment":
			spans = append(spans, byteSpan{start: n.StartByte(), end: n.EndByte()})
		}
		return true
	})
	return spans
}

func lineFullyCommented(line lineSpan, spans []byteSpan, trimmed []byte) bool {
	for _, s := range spans {
		if s.start <= line.startByte && line.endByte <= s.end {
			return true
		}
	}
	return hasCommentPrefix(trimmed)
}

func hasCommentPrefix(trimmed []byte) bool {
	s := string(trimmed)
	return strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/*") || strings.HasPrefix(s, "*")
}
