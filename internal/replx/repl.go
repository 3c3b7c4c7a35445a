// Package replx implements the interactive Read-Eval-Print Loop for the
// lox interpreter (spec.md §6.1's run_prompt). Grounded on
// akashmaji946-go-mix's repl/repl.go: the same readline-backed loop,
// colorized diagnostics, and panic-recovery shape, wired to this
// module's Scan/Parse/Resolve/Interpret pipeline instead of go-mix's
// parser/eval packages.
package replx

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/haldisgard/loxwalk/internal/lox"
)

var (
	promptColor = color.New(color.FgGreen)
	errorColor  = color.New(color.FgRed)
	bannerColor = color.New(color.FgCyan)
)

const banner = `loxwalk — a tree-walking interpreter
Type '.exit' to quit.`

// Repl configures an interactive session. It holds only the prompt; Start
// creates the readline instance and a persistent Interpreter (so variables
// and functions survive across lines, per spec.md §6.1) and prints to the
// writer it is given.
type Repl struct {
	Prompt string
}

func New() *Repl {
	return &Repl{Prompt: "lox> "}
}

// Start runs the loop until '.exit', EOF (Ctrl+D), or a readline error.
// Each accepted chunk of input — which may span several physical lines
// if braces/parens are left open — is run through lox.Run against a
// single long-lived Interpreter.
func (r *Repl) Start(writer io.Writer) error {
	bannerColor.Fprintln(writer, banner)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      r.Prompt,
		HistoryFile: "",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	interp := lox.NewInterpreter()
	interp.Stdout = writer

	var pending strings.Builder
	depth := 0

	for {
		prompt := r.Prompt
		if depth > 0 {
			prompt = "...> "
		}
		rl.SetPrompt(prompt)

		line, err := rl.Readline()
		if err != nil {
			writer.Write([]byte("\n"))
			return nil
		}

		if depth == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if trimmed == ".exit" {
				return nil
			}
		}

		pending.WriteString(line)
		pending.WriteByte('\n')
		depth += braceDelta(line)

		if depth > 0 {
			continue
		}

		source := pending.String()
		pending.Reset()
		depth = 0

		rl.SaveHistory(strings.TrimSpace(source))
		r.execute(writer, interp, source)
	}
}

// braceDelta tracks net { }/( ) nesting so multi-line function and class
// bodies can be entered at the REPL one line at a time. It is a raw
// token-kind counter rather than a parser: it does not understand
// strings or comments, matching the REPL continuation heuristic spec.md
// §6.1 calls for instead of a full incremental parse.
func braceDelta(line string) int {
	delta := 0
	for _, c := range line {
		switch c {
		case '{', '(':
			delta++
		case '}', ')':
			delta--
		}
	}
	return delta
}

func (r *Repl) execute(writer io.Writer, interp *lox.Interpreter, source string) {
	defer func() {
		if rec := recover(); rec != nil {
			errorColor.Fprintf(writer, "[internal error] %v\n", rec)
		}
	}()

	result := lox.Run(interp, source)
	for _, e := range result.Diagnostics.Errors() {
		errorColor.Fprintln(writer, e.Error())
	}
	if result.RuntimeErr != nil {
		errorColor.Fprintln(writer, result.RuntimeErr.Error())
	}
}
