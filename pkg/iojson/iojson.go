// Package iojson reads and writes JSON from a command line interface
// perspective.
package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// Stdin is the --file value that reads from standard input.
const Stdin = "-"

// ErrTerminalInput is returned when --file - is given but stdin is a
// terminal rather than a pipe.
var ErrTerminalInput = errors.New("stdin is a terminal; pipe JSON in or pass a file path")

// WriteLines writes each item as one compact JSON line.
func WriteLines[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("encode line: %w", err)
		}
	}
	return nil
}

// FileReader decodes one JSON document named by a --file flag.
type FileReader[T any] struct {
	path string
}

// Flag returns the --file/-f flag bound to fr.
func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to a JSON file, or - for stdin",
		Destination: &fr.path,
	}
}

// Provided reports whether --file was given.
func (fr *FileReader[T]) Provided() bool {
	return fr.path != ""
}

// Read decodes the file, or stdin when the path is "-".
func (fr *FileReader[T]) Read(stdin io.Reader) (T, error) {
	var v T

	var r io.Reader
	if fr.path == Stdin {
		if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return v, ErrTerminalInput
		}
		r = stdin
	} else {
		f, err := os.Open(fr.path)
		if err != nil {
			return v, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return v, fmt.Errorf("decode JSON: %w", err)
	}
	return v, nil
}
