// qtab - decision-table query tool
//
// Usage:
//
//	qtab query [--subset] <file>   Run stdin queries against a table
//	qtab print <file>              Parse a table and print it back
//	qtab version                   Print version info
//
// qtab query reads one query per line from stdin: whitespace-separated
// key[:value] tokens. A token without : is a NIL-valued key that
// retrieve fills in from the matched row. When stdin is a terminal the
// loop runs on a line editor with history.
//
// Exit codes: 0 on success, the line number of the first failing query
// otherwise, 65534 when the table file cannot be opened, 65535 on an
// internal error.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/qtabdev/qtab/eval"
	"github.com/qtabdev/qtab/qtab"
)

const version = "1.0.0"

const (
	exitOpenFailure = 65534
	exitInternal    = 65535
)

var flagSubset bool

func main() {
	root := &cobra.Command{
		Use:           "qtab",
		Short:         "decision-table query engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	queryCmd := &cobra.Command{
		Use:   "query <file>",
		Short: "run stdin queries against a table",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(runQuery(args[0]))
		},
	}
	queryCmd.Flags().BoolVar(&flagSubset, "subset", false, "allow queries to omit criterion keys")

	printCmd := &cobra.Command{
		Use:   "print <file>",
		Short: "parse a table and print it back",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(runPrint(args[0]))
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("qtab %s\n", version)
		},
	}

	root.AddCommand(queryCmd, printCmd, versionCmd)
	if err := root.Execute(); err != nil {
		fatal("%v", err)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "qtab: "+format+"\n", args...)
	os.Exit(exitInternal)
}

func loadTable(path string) (*qtab.Table, int) {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qtab: failed to open file [%s]: %v\n", path, err)
		return nil, exitOpenFailure
	}
	tab, err := qtab.Parse(string(content))
	if err != nil {
		fmt.Fprintf(os.Stderr, "qtab: %v\n", err)
		return nil, exitInternal
	}
	return tab, 0
}

func runPrint(path string) int {
	tab, code := loadTable(path)
	if code != 0 {
		return code
	}
	if err := tab.Print(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "qtab: %v\n", err)
		return exitInternal
	}
	return 0
}

func runQuery(path string) int {
	tab, code := loadTable(path)
	if code != 0 {
		return code
	}
	ev, err := eval.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "qtab: %v\n", err)
		return exitInternal
	}
	tab.SetEvaluator(ev)

	// The query buffer mixes criterion inputs with data keys to
	// verify or fill, so the host always runs in superset admission.
	options := qtab.Superset
	if flagSubset {
		options |= qtab.Subset
	}

	if isatty.IsTerminal(os.Stdin.Fd()) {
		return interactiveLoop(tab, options)
	}
	return batchLoop(tab, options, os.Stdin, os.Stdout)
}

func batchLoop(tab *qtab.Table, options qtab.Options, in io.Reader, out io.Writer) int {
	firstFail := 0
	lineNo := 0
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lineNo++
		if failed := runLine(tab, options, scanner.Text(), out); failed && firstFail == 0 {
			firstFail = lineNo
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "qtab: %v\n", err)
		return exitInternal
	}
	return firstFail
}

func interactiveLoop(tab *qtab.Table, options qtab.Options) int {
	l := liner.NewLiner()
	defer l.Close()
	l.SetCtrlCAborts(true)

	firstFail := 0
	lineNo := 0
	for {
		line, err := l.Prompt("qtab> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "qtab: %v\n", err)
			return exitInternal
		}
		lineNo++
		if strings.TrimSpace(line) != "" {
			l.AppendHistory(line)
		}
		if failed := runLine(tab, options, line, os.Stdout); failed && firstFail == 0 {
			firstFail = lineNo
		}
	}
	return firstFail
}

// runLine runs one query line: query, then verify and retrieve on the
// matched row. Valued data keys are cross-checked, NIL keys filled.
// Reports whether the line failed.
func runLine(tab *qtab.Table, options qtab.Options, line string, out io.Writer) bool {
	kvs := parseQueryLine(line)
	if len(kvs) == 0 {
		return false
	}

	row, err := tab.Query(kvs, options)
	if err == nil && row == 0 {
		err = errors.New("no row matches")
	}
	if err == nil {
		err = tab.Verify(row, kvs, options)
	}
	if err == nil {
		err = tab.Retrieve(row, kvs, options)
	}
	if err != nil {
		fmt.Fprintf(out, "query `%s` failed: %v\n", strings.TrimSpace(line), err)
		return true
	}

	parts := make([]string, len(kvs))
	for i, kv := range kvs {
		parts[i] = kv.String()
	}
	fmt.Fprintln(out, strings.Join(parts, " "))
	return false
}

// parseQueryLine splits a line into key[:value] tokens. A token with
// no colon is a NIL key; a value that parses as a Number is NUMBER,
// anything else STRING.
func parseQueryLine(line string) []qtab.KeyValue {
	fields := strings.Fields(line)
	kvs := make([]qtab.KeyValue, 0, len(fields))
	for _, tok := range fields {
		key, val, found := strings.Cut(tok, ":")
		if !found {
			kvs = append(kvs, qtab.NilKeyValue(key))
			continue
		}
		if n, err := qtab.NewNumberFromString(val); err == nil {
			kvs = append(kvs, qtab.NumberKeyValue(key, n))
		} else {
			kvs = append(kvs, qtab.StringKeyValue(key, val))
		}
	}
	return kvs
}
