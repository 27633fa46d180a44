package testcase

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func TestExtract(t *testing.T) {
	md := `# Arithmetic

Some prose that is not a test.

## Test: add
` + fence + `minic
function main() -> int { return 2 + 3; }
` + fence + `
` + fence + `result
5
` + fence + `

## Test: undefined
` + fence + `minic
function main() -> int { return y; }
` + fence + `
` + fence + `error
UndefinedVariable 1
` + fence + `
` + fence + `ir
define i64 @main()
` + fence + `
`

	cases, err := Extract([]byte(md))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	be.Equal(t, cases[0].Name, "add")
	be.True(t, strings.Contains(cases[0].Source, "return 2 + 3;"))
	be.Equal(t, len(cases[0].Assertions), 1)
	be.Equal(t, cases[0].Assertions[0].Type, AssertResult)
	be.Equal(t, cases[0].Assertions[0].Content, "5")

	be.Equal(t, cases[1].Name, "undefined")
	be.Equal(t, len(cases[1].Assertions), 2)
	be.Equal(t, cases[1].Assertions[0].Type, AssertError)
	be.Equal(t, cases[1].Assertions[1].Type, AssertIR)
}

func TestExtractRejectsMalformedCases(t *testing.T) {
	tests := map[string]string{
		"no source":    "## Test: a\n" + fence + "result\n1\n" + fence + "\n",
		"no assertion": "## Test: a\n" + fence + "minic\nfunction main() {}\n" + fence + "\n",
		"two sources": "## Test: a\n" + fence + "minic\nx\n" + fence + "\n" +
			fence + "minic\ny\n" + fence + "\n" + fence + "result\n1\n" + fence + "\n",
		"unknown fence": "## Test: a\n" + fence + "wasm\nx\n" + fence + "\n",
		"outside test":  fence + "minic\nx\n" + fence + "\n",
	}

	for name, md := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Extract([]byte(md))
			be.True(t, err != nil)
		})
	}
}
