package indexer

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	minChunkRunes = 50
	maxChunkRunes = 700 // Targets ~450 tokens per chunk for the embedding model
)

// Chunk is one embeddable piece of a note.
type Chunk struct {
	Index int
	Text  string
}

// NoteChunker splits note content into embeddable chunks using goldmark
// block parsing. Notes are written as short markdown-flavored free text, so
// block boundaries (paragraphs, list items, quotes) are the natural split
// points.
type NoteChunker struct {
	parser goldmark.Markdown
}

// NewNoteChunker creates a new NoteChunker.
func NewNoteChunker() *NoteChunker {
	return &NoteChunker{
		parser: goldmark.New(),
	}
}

// ChunkNote splits note content into chunks. Consecutive blocks are packed
// into one chunk until it would exceed the size limit; blocks larger than
// the limit are split on sentence-ish boundaries. Empty content yields no
// chunks.
func (c *NoteChunker) ChunkNote(content string) []Chunk {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}

	source := []byte(trimmed)
	doc := c.parser.Parser().Parse(text.NewReader(source))

	var blocks []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		blockText := extractBlockText(node, source)
		if blockText == "" {
			continue
		}
		blocks = append(blocks, blockText)
	}
	if len(blocks) == 0 {
		blocks = []string{trimmed}
	}

	var pieces []string
	var current strings.Builder
	for _, block := range blocks {
		if current.Len() > 0 && runeLen(current.String())+runeLen(block)+1 > maxChunkRunes {
			pieces = append(pieces, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(block)
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}

	var split []string
	for _, piece := range pieces {
		split = append(split, splitOversized(piece)...)
	}
	split = mergeTiny(split)

	chunks := make([]Chunk, 0, len(split))
	for i, piece := range split {
		chunks = append(chunks, Chunk{Index: i, Text: piece})
	}
	return chunks
}

// extractBlockText collects the raw text of one top-level block node.
func extractBlockText(n ast.Node, source []byte) string {
	var builder strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *ast.Text:
			builder.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				builder.WriteString(" ")
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				builder.Write(line.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(builder.String())
}

// splitOversized splits a piece larger than maxChunkRunes on sentence
// boundaries, falling back to a hard rune split for unbroken text.
func splitOversized(piece string) []string {
	if runeLen(piece) <= maxChunkRunes {
		return []string{piece}
	}

	var result []string
	var current strings.Builder
	for _, sentence := range splitSentences(piece) {
		if current.Len() > 0 && runeLen(current.String())+runeLen(sentence)+1 > maxChunkRunes {
			result = append(result, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if runeLen(sentence) > maxChunkRunes {
			// Single run-on sentence, hard split
			runes := []rune(sentence)
			for len(runes) > maxChunkRunes {
				result = append(result, string(runes[:maxChunkRunes]))
				runes = runes[maxChunkRunes:]
			}
			current.WriteString(string(runes))
			continue
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		result = append(result, strings.TrimSpace(current.String()))
	}
	return result
}

// splitSentences splits on terminal punctuation followed by whitespace.
func splitSentences(s string) []string {
	var sentences []string
	var current strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && (i+1 == len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n') {
			sentence := strings.TrimSpace(current.String())
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			current.Reset()
		}
	}
	if trailing := strings.TrimSpace(current.String()); trailing != "" {
		sentences = append(sentences, trailing)
	}
	return sentences
}

// mergeTiny folds pieces below minChunkRunes into their predecessor so the
// index doesn't fill with fragments that embed poorly.
func mergeTiny(pieces []string) []string {
	if len(pieces) <= 1 {
		return pieces
	}
	merged := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if len(merged) > 0 && runeLen(piece) < minChunkRunes {
			merged[len(merged)-1] = merged[len(merged)-1] + "\n" + piece
			continue
		}
		merged = append(merged, piece)
	}
	return merged
}

func runeLen(s string) int {
	return len([]rune(s))
}
