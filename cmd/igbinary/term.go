package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"golang.org/x/term"
)

type fdWriter interface {
	Fd() uintptr
}

func isTerminal(w any) bool {
	f, ok := w.(fdWriter)
	return ok && term.IsTerminal(int(f.Fd()))
}

// readInput reads the single positional argument, or stdin when there is
// none or it is "-". With hexIn the input is hex text; whitespace is ignored.
func (a *app) readInput(args []string, hexIn bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if !hexIn {
		return data, nil
	}
	clean := strings.Join(strings.Fields(string(data)), "")
	out, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("decode hex input: %w", err)
	}
	return out, nil
}

// writeBinary refuses to dump raw bytes onto a terminal.
func (a *app) writeBinary(data []byte, hexOut bool) error {
	if hexOut {
		_, err := fmt.Fprintln(a.stdout, hex.EncodeToString(data))
		return err
	}
	if isTerminal(a.stdout) {
		return fmt.Errorf("refusing to write binary output to a terminal, use --hex or redirect")
	}
	_, err := a.stdout.Write(data)
	return err
}

// writeText writes text, syntax-highlighted as lang when stdout is a
// terminal. Highlighting failures fall back to plain text.
func (a *app) writeText(text, lang string) error {
	if lang != "" && isTerminal(a.stdout) {
		var buf bytes.Buffer
		if err := quick.Highlight(&buf, text, lang, "terminal256", "monokai"); err == nil {
			_, err = a.stdout.Write(buf.Bytes())
			return err
		}
		a.log.Debug("highlighting failed, writing plain text")
	}
	_, err := io.WriteString(a.stdout, text)
	return err
}
