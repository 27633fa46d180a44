package errors

import (
	"encoding/json"
	"fmt"
	"io"

	"fortio.org/safecast"
	"github.com/fatih/color"
)

var (
	locationColor = color.New(color.Bold)
	kindColor     = color.New(color.FgRed, color.Bold)
	noteColor     = color.New(color.FgCyan)
)

// Print writes one line per diagnostic in err, followed by its notes:
//
//	file:line:col: error[Kind]: message
//	  file:line:col: note: message
func Print(w io.Writer, err error, useColor bool) {
	for _, c := range []*color.Color{locationColor, kindColor, noteColor} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, e := range All(err) {
		fmt.Fprintf(w, "%s: %s %s\n",
			locationColor.Sprint(e.Location),
			kindColor.Sprintf("error[%s]:", e.Kind),
			e.Message,
		)
		for _, n := range e.Notes {
			fmt.Fprintf(w, "  %s: %s %s\n", locationColor.Sprint(n.Location), noteColor.Sprint("note:"), n.Message)
		}
	}
}

type LocationJSON struct {
	File   string `json:"file"`
	Line   uint32 `json:"line"`
	Column uint32 `json:"column,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type DiagnosticJSON struct {
	Kind     string       `json:"kind"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Expected *int         `json:"expected,omitempty"`
	Got      *int         `json:"got,omitempty"`
}

func locationJSON(e *Error, file string, line, column int) (LocationJSON, error) {
	l, err := safecast.Conv[uint32](line)
	if err != nil {
		return LocationJSON{}, fmt.Errorf("%s: line out of range: %w", e.Kind, err)
	}
	c, err := safecast.Conv[uint32](column)
	if err != nil {
		return LocationJSON{}, fmt.Errorf("%s: column out of range: %w", e.Kind, err)
	}
	return LocationJSON{File: file, Line: l, Column: c}, nil
}

// ToJSON converts the diagnostics in err into their JSON form.
func ToJSON(err error) ([]DiagnosticJSON, error) {
	out := []DiagnosticJSON{}
	for _, e := range All(err) {
		loc, cerr := locationJSON(e, e.Location.Filename, e.Location.Line, e.Location.Column)
		if cerr != nil {
			return nil, cerr
		}
		d := DiagnosticJSON{
			Kind:     e.Kind.String(),
			Message:  e.Message,
			Location: loc,
		}
		if e.Kind == ArityMismatch {
			expected, got := e.Expected, e.Got
			d.Expected = &expected
			d.Got = &got
		}
		for _, n := range e.Notes {
			nloc, cerr := locationJSON(e, n.Location.Filename, n.Location.Line, n.Location.Column)
			if cerr != nil {
				return nil, cerr
			}
			d.Notes = append(d.Notes, NoteJSON{Message: n.Message, Location: nloc})
		}
		out = append(out, d)
	}
	return out, nil
}

func WriteJSON(w io.Writer, err error) error {
	diags, cerr := ToJSON(err)
	if cerr != nil {
		return cerr
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Diagnostics []DiagnosticJSON `json:"diagnostics"`
	}{diags})
}
