package types

import (
	"fmt"
)

type Position struct {
	Line     int
	Column   int
	Filename string
}

func (p Position) String() string {
	if p.Filename == "" {
		p.Filename = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

