// Package testcase extracts lowering test cases from markdown documents.
//
// A case starts at a heading "Test: <name>" and owns the fenced code blocks
// that follow it: exactly one "minic" fence with the program, and any number
// of assertion fences ("result", "error", "ir").
package testcase

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const SourceFence = "minic"

type AssertionType string

const (
	// AssertResult runs main and compares its printed value.
	AssertResult AssertionType = "result"
	// AssertError expects lowering to fail: "<Kind> <line>" per diagnostic.
	AssertError AssertionType = "error"
	// AssertIR lists lines that must appear in the textual module.
	AssertIR AssertionType = "ir"
)

type Assertion struct {
	Type    AssertionType
	Content string
}

type Case struct {
	Name       string
	Line       int
	Source     string
	Assertions []Assertion
}

func isAssertion(lang string) bool {
	switch AssertionType(lang) {
	case AssertResult, AssertError, AssertIR:
		return true
	}
	return false
}

func Extract(markdown []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var cases []Case
	var current *Case

	finish := func() error {
		if current == nil {
			return nil
		}
		if current.Source == "" {
			return fmt.Errorf("test '%s' has no %s fence", current.Name, SourceFence)
		}
		if len(current.Assertions) == 0 {
			return fmt.Errorf("test '%s' has no assertions", current.Name)
		}
		cases = append(cases, *current)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, markdown)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}
			if err := finish(); err != nil {
				return ast.WalkStop, err
			}
			current = &Case{
				Name: strings.TrimPrefix(heading, "Test: "),
				Line: lineOf(n, markdown),
			}
		case *ast.FencedCodeBlock:
			lang := string(n.Language(markdown))
			line := lineOf(n, markdown)
			if current == nil {
				if lang != "" {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence outside of a test", line, lang)
				}
				return ast.WalkContinue, nil
			}

			content := fenceContent(n, markdown)
			switch {
			case lang == SourceFence:
				if current.Source != "" {
					return ast.WalkStop, fmt.Errorf("line %d: test '%s' has more than one %s fence", line, current.Name, SourceFence)
				}
				current.Source = content
			case isAssertion(lang):
				current.Assertions = append(current.Assertions, Assertion{
					Type:    AssertionType(lang),
					Content: strings.TrimRight(content, "\n"),
				})
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence '%s' in test '%s'", line, lang, current.Name)
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}

	return cases, nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

// lineOf returns the 1-based markdown line of a block node.
func lineOf(node ast.Node, source []byte) int {
	lines := node.Lines()
	if lines.Len() == 0 {
		return 0
	}
	return bytes.Count(source[:lines.At(0).Start], []byte("\n")) + 1
}
