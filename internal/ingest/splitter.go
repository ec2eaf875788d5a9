package ingest

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Candidate is a split piece of a raw document before it becomes a chunk.
type Candidate struct {
	Text    string
	Section string
}

// SplitMarkdown walks the goldmark AST and cuts the document at level 1-2
// headings, further splitting oversized sections at maxChars. The section
// label is the governing heading.
func SplitMarkdown(content string, maxChars int) []Candidate {
	if maxChars <= 0 {
		maxChars = 1000
	}
	md := goldmark.New()
	reader := text.NewReader([]byte(content))
	doc := md.Parser().Parse(reader)

	var candidates []Candidate
	var parts []string
	var size int
	var heading string

	flush := func() {
		if len(parts) == 0 {
			return
		}
		body := strings.TrimSpace(strings.Join(parts, "\n\n"))
		if body != "" {
			candidates = append(candidates, Candidate{Text: body, Section: heading})
		}
		parts = nil
		size = 0
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if h, ok := node.(*ast.Heading); ok && h.Level <= 2 {
			flush()
			heading = string(h.Text(reader.Source()))
			continue
		}
		txt := extractText(node, reader.Source())
		if txt == "" {
			continue
		}
		if size > 0 && size+len(txt) > maxChars {
			flush()
		}
		parts = append(parts, txt)
		size += len(txt)
	}
	flush()
	return candidates
}

// SplitCode windows a source file by whole lines up to maxChars per piece;
// the section label is the covered line range.
func SplitCode(content string, maxChars int) []Candidate {
	if maxChars <= 0 {
		maxChars = 1000
	}
	lines := strings.Split(content, "\n")
	var candidates []Candidate
	var window []string
	var size int
	start := 1

	flush := func(end int) {
		body := strings.TrimRight(strings.Join(window, "\n"), "\n")
		if strings.TrimSpace(body) != "" {
			candidates = append(candidates, Candidate{
				Text:    body,
				Section: fmt.Sprintf("L%d-L%d", start, end),
			})
		}
		window = nil
		size = 0
		start = end + 1
	}

	for i, line := range lines {
		if size > 0 && size+len(line)+1 > maxChars {
			flush(i)
		}
		window = append(window, line)
		size += len(line) + 1
	}
	flush(len(lines))
	return candidates
}

func extractText(n ast.Node, source []byte) string {
	if fenced, ok := n.(*ast.FencedCodeBlock); ok {
		var sb strings.Builder
		lang := string(fenced.Language(source))
		sb.WriteString("```" + lang + "\n")
		for i := 0; i < fenced.Lines().Len(); i++ {
			line := fenced.Lines().At(i)
			sb.Write(line.Value(source))
		}
		sb.WriteString("```")
		return sb.String()
	}
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindText {
			sb.Write(node.(*ast.Text).Segment.Value(source))
			sb.WriteByte(' ')
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
