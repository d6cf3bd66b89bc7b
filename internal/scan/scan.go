// Package scan extracts annotated code samples from Markdown documents.
// It walks the goldmark block tree, collects fenced code blocks whose info
// string names a recognized sample dialect, and pairs each block with a
// title taken from the immediately preceding paragraph.
package scan

import (
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// DefaultLanguages lists the fence info strings that mark a block as an
// executable sample. Both spellings are equivalent.
var DefaultLanguages = []string{"go test", "gotest"}

// Sample is one fenced code block eligible to become a test case.
// Title is empty when no preceding paragraph supplied one; the assembler
// substitutes a default later.
type Sample struct {
	Title  string
	Lang   string
	Source string
}

// Scanner extracts samples from Markdown source. The zero value recognizes
// DefaultLanguages.
type Scanner struct {
	// Languages overrides the recognized fence info strings when non-nil.
	Languages []string
}

// Scan returns every recognized sample in document order. Blocks with an
// unrecognized info string are skipped silently; documents routinely contain
// unrelated code samples. Scan never fails: a Markdown parse always
// succeeds, it just may find nothing.
func (s *Scanner) Scan(source []byte) []Sample {
	langs := s.Languages
	if langs == nil {
		langs = DefaultLanguages
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var samples []Sample
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		fcb, ok := n.(*gmast.FencedCodeBlock)
		if !ok {
			return gmast.WalkContinue, nil
		}
		lang := fenceInfo(fcb, source)
		if !recognized(lang, langs) {
			return gmast.WalkContinue, nil
		}
		samples = append(samples, Sample{
			Title:  precedingTitle(fcb, source),
			Lang:   lang,
			Source: blockText(fcb, source),
		})
		return gmast.WalkContinue, nil
	})
	return samples
}

func recognized(lang string, langs []string) bool {
	for _, l := range langs {
		if lang == l {
			return true
		}
	}
	return false
}

// fenceInfo returns the full info string of a fenced block. Language() only
// yields the first word, which would split "go test" in half.
func fenceInfo(fcb *gmast.FencedCodeBlock, source []byte) string {
	if fcb.Info == nil {
		return ""
	}
	return strings.TrimSpace(string(fcb.Info.Segment.Value(source)))
}

// blockText concatenates the raw lines of a fenced block.
func blockText(fcb *gmast.FencedCodeBlock, source []byte) string {
	var b strings.Builder
	lines := fcb.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return b.String()
}

// precedingTitle derives a sample title from the paragraph directly before
// the block. A trailing colon is conventional ("Adding two numbers:") and is
// stripped.
func precedingTitle(n gmast.Node, source []byte) string {
	prev := n.PreviousSibling()
	para, ok := prev.(*gmast.Paragraph)
	if !ok {
		return ""
	}
	title := strings.TrimSpace(flatten(para, source))
	return strings.TrimSuffix(title, ":")
}

// flatten renders the plain text of an inline tree, dropping markup.
func flatten(n gmast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		default:
			b.WriteString(flatten(c, source))
		}
	}
	return b.String()
}
