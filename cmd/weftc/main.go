// Command weftc is the CLI host: it wires a pre-lexed token stream
// through the parser into an AST, then hands a trivial native entry
// point to the runtime so the whole source-to-execution pipeline this
// module covers can be exercised end to end.
//
// The lexer that would normally turn program text into tokens is out of
// scope for this module, so weftc reads tokens from a JSON file instead
// of source text directly; see loadTokens.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/weftlang/weft/pkg/ast"
	"github.com/weftlang/weft/pkg/parser"
	"github.com/weftlang/weft/pkg/runtime"
	"github.com/weftlang/weft/pkg/token"
)

func main() {
	tokenFile := flag.String("tokens", "", "path to a JSON token stream")
	stackSize := flag.Int("stack-size", 8*1024, "process stack size in bytes")
	pollers := flag.Int("pollers", 1, "number of network-poll workers")
	flag.Parse()

	if *tokenFile == "" {
		fmt.Fprintln(os.Stderr, "usage: weftc -tokens <file.json> [args...]")
		os.Exit(1)
	}

	toks, err := loadTokens(*tokenFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load tokens: %v\n", err)
		os.Exit(1)
	}

	root, err := parser.New(token.NewStream(toks)).Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse error: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "weftc: ", log.LstdFlags)

	cfg := runtime.Config{StackSize: *stackSize, NetworkPollers: *pollers}
	argv := append([]string{os.Args[0]}, flag.Args()...)
	rt, err := runtime.New(cfg, methodCounts(root), argv, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start runtime: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	if err := rt.Start(entryFor(root)); err != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %v\n", err)
		os.Exit(1)
	}
}

// entryFor builds a native entry point that walks root's top-level nodes
// and prints a one-line summary of each. Executing individual AST nodes
// belongs to the runtime's built-in method table, which is out of scope
// here; this stands in for that dispatch just enough to prove the pipeline
// runs end to end.
func entryFor(root *ast.Expressions) runtime.Entry {
	return func(p *runtime.Process, s *runtime.State) error {
		for _, node := range root.Nodes {
			pos := node.Pos()
			fmt.Printf("%d:%d %T\n", pos.Line, pos.Column, node)
		}
		return nil
	}
}

// methodCounts walks root's top-level classes and counts each one's
// declared methods, producing the pre-sizing table runtime.New expects.
func methodCounts(root *ast.Expressions) runtime.MethodCounts {
	var counts runtime.MethodCounts
	for _, node := range root.Nodes {
		class, ok := node.(*ast.Class)
		if !ok {
			continue
		}
		n := 0
		if body, ok := class.Body.(*ast.Expressions); ok {
			for _, member := range body.Nodes {
				if _, ok := member.(*ast.Method); ok {
					n++
				}
			}
		}
		counts = append(counts, n)
	}
	return counts
}

// tokenRecord is the on-disk shape of one token in the JSON stream file.
type tokenRecord struct {
	Kind   string `json:"kind"`
	Text   string `json:"text"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func loadTokens(path string) ([]token.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []tokenRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	toks := make([]token.Token, len(records))
	for i, r := range records {
		kind, ok := token.KindByName(r.Kind)
		if !ok {
			return nil, fmt.Errorf("unknown token kind %q at index %d", r.Kind, i)
		}
		toks[i] = token.Token{Kind: kind, Text: r.Text, Line: r.Line, Column: r.Column}
	}
	return toks, nil
}
