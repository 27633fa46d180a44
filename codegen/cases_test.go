package codegen

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/pontaoski/minic/errors"
	"github.com/pontaoski/minic/eval"
	"github.com/pontaoski/minic/parser"
	"github.com/pontaoski/minic/testcase"
)

func diagnosticLines(err error) string {
	var lines []string
	for _, e := range errors.All(err) {
		lines = append(lines, fmt.Sprintf("%s %d", e.Kind, e.Location.Line))
	}
	return strings.Join(lines, "\n")
}

func TestLoweringCases(t *testing.T) {
	data, err := os.ReadFile("testdata/lowering.md")
	be.Err(t, err, nil)

	cases, err := testcase.Extract(data)
	be.Err(t, err, nil)
	be.True(t, len(cases) > 0)

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			prog, err := parser.ParseString("case.mc", tc.Source)
			if err != nil {
				t.Fatalf("lowering.md:%d: %v", tc.Line, err)
			}

			m, lowerErr := Codegen(prog, Settings{})

			for _, a := range tc.Assertions {
				switch a.Type {
				case testcase.AssertError:
					be.Equal(t, diagnosticLines(lowerErr), a.Content)
				case testcase.AssertResult:
					be.Err(t, lowerErr, nil)
					ret, err := eval.New(m).Call("main")
					be.Err(t, err, nil)
					be.Equal(t, ret.String(), a.Content)
				case testcase.AssertIR:
					text := m.String()
					for _, line := range strings.Split(a.Content, "\n") {
						if !strings.Contains(text, line) {
							t.Errorf("lowering.md:%d: module does not contain %q:\n%s", tc.Line, line, text)
						}
					}
				}
			}
		})
	}
}
