// Command exprbox evaluates expressions from its arguments or, with none,
// from an interactive prompt.
//
//	exprbox '4 + 5 * x' -given x=3
//	exprbox
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/exprbox/exprbox"
)

const (
	historyFile = ".exprbox_history"
	prompt      = "> "
)

func main() {
	log.SetFlags(0)
	var (
		given = map[string]any{}
		echo  bool
		noOpt bool
	)
	addgiven := func(s string) error {
		d := strings.SplitN(s, "=", 2)
		if len(d) != 2 {
			return fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
		}
		name := strings.TrimSpace(d[0])
		v, err := evalOnce(strings.TrimSpace(d[1]), nil, false)
		if err != nil {
			return fmt.Errorf("setting %s: %w", name, err)
		}
		given[name] = v
		return nil
	}
	flag.Func("given", "name=value variable definition (any number of times)", addgiven)
	flag.BoolVar(&echo, "echo", false, "print the canonical form before the result")
	flag.BoolVar(&noOpt, "no-opt", false, "disable constant folding")
	flag.Parse()

	if flag.NArg() > 0 {
		for _, arg := range flag.Args() {
			if err := run(arg, given, echo, noOpt); err != nil {
				log.Fatal(err)
			}
		}
		return
	}
	repl(given, echo, noOpt)
}

func run(src string, given map[string]any, echo, noOpt bool) error {
	opts := []exprbox.Option{
		exprbox.Constants(given),
		exprbox.Symbols(exprbox.MathSymbols()),
		exprbox.PureSymbols(),
	}
	if noOpt {
		opts = append(opts, exprbox.NoOptimize())
	}
	e, err := exprbox.New(src, opts...)
	if err != nil {
		return err
	}
	if echo {
		fmt.Println(e)
	}
	v, err := e.Evaluate()
	if err != nil {
		return err
	}
	fmt.Println(format(v))
	return nil
}

func evalOnce(src string, given map[string]any, noOpt bool) (any, error) {
	opts := []exprbox.Option{
		exprbox.Constants(given),
		exprbox.Symbols(exprbox.MathSymbols()),
		exprbox.PureSymbols(),
	}
	if noOpt {
		opts = append(opts, exprbox.NoOptimize())
	}
	e, err := exprbox.New(src, opts...)
	if err != nil {
		return nil, err
	}
	return e.Evaluate()
}

func repl(given map[string]any, echo, noOpt bool) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		line, err := ln.Prompt(prompt)
		if err != nil {
			fmt.Println()
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":q" {
			return
		}
		ln.AppendHistory(line)
		if name, src, ok := assignment(line); ok {
			v, err := evalOnce(src, given, noOpt)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			given[name] = v
			fmt.Printf("%s = %s\n", name, format(v))
			continue
		}
		if err := run(line, given, echo, noOpt); err != nil {
			fmt.Println("error:", err)
		}
	}
}

// assignment splits "name = expr" input. A leading identifier followed by a
// single = that is not == marks an assignment.
func assignment(line string) (name, src string, ok bool) {
	i := strings.IndexByte(line, '=')
	if i <= 0 || i+1 >= len(line) || line[i+1] == '=' {
		return "", "", false
	}
	name = strings.TrimSpace(line[:i])
	for j, r := range name {
		alpha := r == '_' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
		if !alpha && (j == 0 || r < '0' || r > '9') {
			return "", "", false
		}
	}
	if name == "" {
		return "", "", false
	}
	return name, line[i+1:], true
}

func format(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
