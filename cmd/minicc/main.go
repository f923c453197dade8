package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/kr/pretty"

	"minicc/internal/ast"
	"minicc/internal/codegen"
	"minicc/internal/diag"
	"minicc/internal/interp"
	"minicc/internal/ir"
	"minicc/internal/lexer"
	"minicc/internal/loader"
	"minicc/internal/source"
)

const version = "0.1.0"

// exitDivideByZero matches the status of compiled programs.
const exitDivideByZero = 70

func main() {
	os.Exit(minicc(os.Args[1:]))
}

type config struct {
	tokens  bool
	ast     bool
	ir      bool
	c       bool
	llvm    bool
	run     bool
	jobs    int
	out     string
	verbose bool
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		w := fs.Output()
		fmt.Fprintln(w, "minicc - compiler for a small C subset")
		fmt.Fprintln(w, "usage:")
		fmt.Fprintln(w, "  minicc [flags] file.c")
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "flags:")
		fs.PrintDefaults()
	}
}

func minicc(args []string) int {
	log.SetFlags(0)
	log.SetPrefix("minicc: ")

	var cfg config
	var showVersion bool
	fs := flag.NewFlagSet("minicc", flag.ContinueOnError)
	fs.BoolVar(&cfg.tokens, "T", false, "print tokens as KIND:lexeme:line:col")
	fs.BoolVar(&cfg.ast, "A", false, "print the syntax tree")
	fs.BoolVar(&cfg.ir, "ir", false, "print IR (default)")
	fs.BoolVar(&cfg.c, "c", false, "print the C translation")
	fs.BoolVar(&cfg.llvm, "llvm", false, "print LLVM IR (needs a build with -tags llvm)")
	fs.BoolVar(&cfg.run, "run", false, "execute the program and exit with main's result")
	fs.IntVar(&cfg.jobs, "j", 1, "functions generated concurrently")
	fs.StringVar(&cfg.out, "o", "-", "output file, - for stdout")
	fs.BoolVar(&cfg.verbose, "v", false, "log pipeline progress")
	fs.BoolVar(&showVersion, "version", false, "print version and exit")
	fs.Usage = usage(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if showVersion {
		fmt.Println("minicc", version)
		return 0
	}
	switch fs.NArg() {
	case 0:
		fs.Usage()
		return 1
	case 1:
	default:
		log.Printf("expected one source file, got %d", fs.NArg())
		return 1
	}
	if n := countTrue(cfg.tokens, cfg.ast, cfg.ir, cfg.c, cfg.llvm, cfg.run); n > 1 {
		log.Print("-T, -A, -ir, -c, -llvm and -run are mutually exclusive")
		return 1
	}
	if cfg.jobs < 1 {
		log.Printf("invalid -j value: %d", cfg.jobs)
		return 1
	}

	path := fs.Arg(0)
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read source file: %v", err)
	}
	file := source.NewFile(path, string(b))

	if cfg.tokens {
		return cfg.write(func(w io.Writer) error {
			return dumpTokens(w, file)
		})
	}

	opts := loader.Options{Jobs: cfg.jobs}
	if cfg.verbose {
		opts.Logger = log.New(os.Stderr, "minicc: ", 0)
	}
	res, diags, err := loader.BuildFile(file, opts)
	if err != nil {
		log.Print(err)
		return 1
	}
	if !diags.Empty() {
		diag.PrintWithSource(os.Stderr, diags, file)
		return 1
	}

	switch {
	case cfg.ast:
		return cfg.write(func(w io.Writer) error {
			_, err := pretty.Fprintf(w, "%# v\n", ast.StripSpans(res.Program))
			return err
		})
	case cfg.c:
		return cfg.write(func(w io.Writer) error {
			csrc, err := codegen.EmitC(res.Module, codegen.EmitOptions{EmitDriverMain: res.Module.Func("main") != nil})
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, csrc)
			return err
		})
	case cfg.llvm:
		return cfg.write(func(w io.Writer) error {
			text, err := emitLLVM(res.Module)
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, text)
			return err
		})
	case cfg.run:
		return runModule(res.Module)
	default:
		return cfg.write(func(w io.Writer) error {
			_, err := io.WriteString(w, res.Module.Format())
			return err
		})
	}
}

func countTrue(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

// write sends one dump to the configured output.
func (cfg config) write(emit func(io.Writer) error) int {
	if err := cfg.writeOut(emit); err != nil {
		log.Print(err)
		return 1
	}
	return 0
}

func (cfg config) writeOut(emit func(io.Writer) error) (err error) {
	if cfg.out == "-" {
		return emit(os.Stdout)
	}
	f, err := os.Create(cfg.out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return emit(f)
}

func dumpTokens(w io.Writer, file *source.File) error {
	for _, t := range lexer.Lex(file) {
		_, line, col := t.Span.LocStart()
		if _, err := fmt.Fprintf(w, "%s:%s:%d:%d\n", t.Kind, t.Lexeme, line, col); err != nil {
			return err
		}
	}
	return nil
}

func runModule(mod *ir.Module) int {
	v, err := interp.Run(mod, interp.Options{Stdin: os.Stdin, Stdout: os.Stdout})
	switch {
	case errors.Is(err, interp.ErrDivideByZero):
		// Same message as the compiled runtime.
		log.Print(interp.ErrDivideByZero)
		return exitDivideByZero
	case err != nil:
		log.Print(err)
		return 1
	}
	if v.K == interp.VFloat {
		fmt.Println(v)
		return 0
	}
	return int(uint8(v.I))
}
