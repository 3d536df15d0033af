package instructions

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/layercast/internal/ir"
)

// Extension is the file extension of saved instruction lists.
const Extension = ".inli"

// Encode writes list in .inli form: for each instruction a line of
// space-joined tokens followed by a line of space-joined flags.
func Encode(w io.Writer, list List) error {
	bw := bufio.NewWriter(w)
	for _, inst := range list {
		if _, err := fmt.Fprintf(bw, "%s\n%s\n", strings.Join(inst.Tokens, " "), inst.Flags); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeError reports a malformed .inli file.
type DecodeError struct {
	Line    int
	Message string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Decode reads an .inli stream. The whole stream is parsed before anything
// is returned, so a malformed file never yields a partial list.
func Decode(r io.Reader) (List, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		list   List
		tokens []string
		num    int
		odd    bool
	)
	for sc.Scan() {
		num++
		text := strings.TrimRight(sc.Text(), "\r")
		if !odd {
			tokens = splitTokens(text)
			if len(tokens) == 0 {
				return nil, &DecodeError{Line: num, Message: "empty command line"}
			}
			odd = true
			continue
		}
		flags, err := parseFlags(text)
		if err != nil {
			return nil, &DecodeError{Line: num, Message: err.Error()}
		}
		list = append(list, ir.Instruction{Tokens: tokens, Flags: flags})
		odd = false
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if odd {
		return nil, &DecodeError{Line: num, Message: "command without a flag line"}
	}
	return list, nil
}

func parseFlags(text string) (ir.FlagSet, error) {
	flags := ir.FlagSet{}
	for _, field := range strings.Fields(text) {
		f, err := ir.ParseFlag(field)
		if err != nil {
			return nil, fmt.Errorf("invalid flag %q", field)
		}
		flags = flags.With(f)
	}
	return flags, nil
}

// splitTokens splits on single spaces and drops the empty tokens left by
// repeated spaces.
func splitTokens(s string) []string {
	parts := strings.Split(s, " ")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Path resolves a save/load name against dir. Names without an extension
// get ".inli"; absolute names are used as given.
func Path(dir, name string) string {
	if filepath.Ext(name) == "" {
		name += Extension
	}
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// SaveFile writes list to path, replacing any existing file.
func SaveFile(path string, list List) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := Encode(f, list); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// LoadFile reads and decodes the list at path.
func LoadFile(path string) (List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer f.Close()
	list, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return list, nil
}
