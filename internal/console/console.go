package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/roach88/layercast/internal/grammar"
	"github.com/roach88/layercast/internal/instructions"
	"github.com/roach88/layercast/internal/ir"
)

// Prompt is printed before each line on an interactive terminal.
const Prompt = "Please enter a command: "

// Outputs is the routing the display command toggles.
type Outputs interface {
	Vive() bool
	Monitor() bool
	SetVive(on bool) error
	SetMonitor(on bool) error
}

// History lists the edits journaled during this session.
type History interface {
	Edits(ctx context.Context) ([]ir.Edit, error)
}

// Console resolves operator commands and applies them to a store.
type Console struct {
	grammar *grammar.Grammar
	store   *instructions.Store
	outputs Outputs
	history History
	dir     string
	out     io.Writer
	styles  Styles
	logger  *slog.Logger
	exit    func()
}

// Option configures a Console.
type Option func(*Console)

// WithOutputs enables the display command.
func WithOutputs(o Outputs) Option {
	return func(c *Console) { c.outputs = o }
}

// WithHistory enables the history command.
func WithHistory(h History) Option {
	return func(c *Console) { c.history = h }
}

// WithInstructionsDir sets the directory save and load resolve names in.
func WithInstructionsDir(dir string) Option {
	return func(c *Console) { c.dir = dir }
}

// WithWriter sets where diagnostics and listings go. Defaults to stdout.
func WithWriter(w io.Writer) Option {
	return func(c *Console) { c.out = w }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Console) { c.logger = l }
}

// WithExit is called once when the operator types exit.
func WithExit(fn func()) Option {
	return func(c *Console) { c.exit = fn }
}

// New creates a console over g and store.
func New(g *grammar.Grammar, store *instructions.Store, opts ...Option) *Console {
	c := &Console{
		grammar: g,
		store:   store,
		out:     os.Stdout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.styles = NewStyles(c.out)
	return c
}

// MaxLineBytes bounds one command line. Longer lines are reported and
// skipped; the console keeps reading.
const MaxLineBytes = 1 << 20

// line is one line read from the operator. tooLong marks a line whose
// text was dropped for exceeding MaxLineBytes.
type line struct {
	text    string
	tooLong bool
}

// Run reads commands from in until exit, EOF or ctx is cancelled. With
// prompt set, the prompt is printed before every line.
func (c *Console) Run(ctx context.Context, in io.Reader, prompt bool) error {
	lines := make(chan line)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		r := bufio.NewReader(in)
		for {
			l, err := readLine(r, MaxLineBytes)
			if err == nil || l.text != "" || l.tooLong {
				select {
				case lines <- l:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if prompt {
			fmt.Fprint(c.out, c.styles.Prompt.Render(Prompt))
		}
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return fmt.Errorf("read command: %w", err)
				default:
				}
				return nil
			}
			if l.tooLong {
				c.errorf("Invalid command: line longer than %d bytes", MaxLineBytes)
				c.logger.Debug("command rejected", "error", "line too long")
				continue
			}
			if c.Execute(ctx, l.text) {
				return nil
			}
		}
	}
}

// readLine reads through the next newline. Past limit bytes the text is
// discarded but the rest of the line is still consumed.
func readLine(r *bufio.Reader, limit int) (line, error) {
	var (
		buf     []byte
		tooLong bool
	)
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > limit {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return line{text: string(buf), tooLong: tooLong}, err
	}
}

// Execute runs one command line and reports whether it was exit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	tokens := Split(line)
	if len(tokens) == 0 {
		return false
	}
	res, err := c.grammar.Resolve(tokens)
	if err != nil {
		c.errorf("Invalid command: %s", err)
		c.logger.Debug("command rejected", "line", line, "error", err)
		return false
	}
	return c.dispatch(ctx, tokens, res.Flags)
}

// Split breaks a line on single spaces and drops empty tokens.
func Split(line string) []string {
	parts := strings.Split(strings.TrimRight(line, "\r\n"), " ")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.Trim(p, "\t"); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) errorf(format string, args ...any) {
	c.println(c.styles.Error.Render(fmt.Sprintf(format, args...)))
}

func (c *Console) noticef(format string, args ...any) {
	c.println(c.styles.Notice.Render(fmt.Sprintf(format, args...)))
}

func (c *Console) successf(format string, args ...any) {
	c.println(c.styles.Success.Render(fmt.Sprintf(format, args...)))
}
