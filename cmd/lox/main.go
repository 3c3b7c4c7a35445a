// Command lox is the CLI front end for the loxwalk interpreter: a
// tokenize/parse/resolve debug surface plus run_file/run_prompt dispatch
// (spec.md §6.1-§6.3). Grounded on sam-decook-lox's codecrafters/cmd/
// main.go for the subcommand shape and akashmaji946-go-mix's main/main.go
// for colorized diagnostics and the file-vs-REPL split.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/haldisgard/loxwalk/internal/lox"
	"github.com/haldisgard/loxwalk/internal/replx"
)

var errColor = color.New(color.FgRed)

func main() {
	if len(os.Args) < 2 {
		repl := replx.New()
		if err := repl.Start(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	switch os.Args[1] {
	case "tokenize", "parse", "resolve":
		if len(os.Args) < 3 {
			usage()
		}
		os.Exit(debugCommand(os.Args[1], os.Args[2]))
	case "run":
		if len(os.Args) < 3 {
			usage()
		}
		os.Exit(runFile(os.Args[2]))
	default:
		// Bare "lox <file>" runs the file directly.
		os.Exit(runFile(os.Args[1]))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: lox [tokenize|parse|resolve|run] <file>")
	os.Exit(1)
}

// runFile implements spec.md §6.1's run_file: read the file, run the
// full pipeline, map errors to a nonzero exit code (spec.md §6.3 leaves
// the exact codes implementation-chosen).
func runFile(path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	interp := lox.NewInterpreter()
	result := lox.Run(interp, string(source))

	for _, e := range result.Diagnostics.Errors() {
		errColor.Fprintln(os.Stderr, e.Error())
	}
	if result.Diagnostics.HasErrors() {
		return 65
	}
	if result.RuntimeErr != nil {
		errColor.Fprintln(os.Stderr, result.RuntimeErr.Error())
		return 70
	}
	return 0
}

// debugCommand exposes the Scan/Parse/Resolve stages individually, for
// inspecting the pipeline short of full execution — the Go-native
// counterpart to original_source/src/Lox/AstPrinter.cpp's tree-printing
// debug aid, reworked around this module's Expr.String()/Stmt.String().
func debugCommand(cmd, path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	diags := lox.NewDiagnostics()
	scanner := lox.NewScanner(string(source), diags)
	tokens := scanner.Scan()

	if cmd == "tokenize" {
		for _, t := range tokens {
			fmt.Println(t.String())
		}
		if diags.HasErrors() {
			printErrors(diags)
			return 65
		}
		return 0
	}

	parser := lox.NewParser(tokens, diags)
	program := parser.Parse()

	if cmd == "parse" {
		for _, s := range program {
			fmt.Println(s.String())
		}
		if diags.HasErrors() {
			printErrors(diags)
			return 65
		}
		return 0
	}

	// cmd == "resolve"
	if diags.HasErrors() {
		printErrors(diags)
		return 65
	}
	resolver := lox.NewResolver(diags)
	resolver.Resolve(program)
	if diags.HasErrors() {
		printErrors(diags)
		return 65
	}
	fmt.Println("resolved with no errors")
	return 0
}

func printErrors(diags *lox.Diagnostics) {
	for _, e := range diags.Errors() {
		errColor.Fprintln(os.Stderr, e.Error())
	}
}
