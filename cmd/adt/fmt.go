package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scott-cotton/cli"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/arxml-community/arxml-dev-tools/internal/logger"
)

func fmtFiles(cfg *FmtConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Fmt, cc, args, 1, -1)
	if err != nil {
		return err
	}
	p := cfg.colors(cc.Out)
	failed := 0
	for _, file := range args {
		content, err := os.ReadFile(file)
		if err != nil {
			logger.Printf("Error reading %s: %v\n", file, err)
			failed++
			continue
		}
		doc, err := cfg.loadDocument(file)
		if err != nil {
			logger.Printf("Error parsing %s: %v\n", file, err)
			failed++
			continue
		}
		formatted := doc.Bytes()
		if bytes.Equal(content, formatted) {
			continue
		}
		switch {
		case cfg.List:
			fmt.Fprintln(cc.Out, file)
		case cfg.Diff:
			writeDiff(cc.Out, p, file, file+" (formatted)", string(content), string(formatted))
		default:
			if err := os.WriteFile(file, formatted, 0644); err != nil {
				logger.Printf("Error writing %s: %v\n", file, err)
				failed++
				continue
			}
			logger.Printf("Formatted %s\n", file)
		}
	}
	if failed > 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Diff, cc, args, 2, 2)
	if err != nil {
		return err
	}
	a, err := cfg.loadDocument(args[0])
	if err != nil {
		return err
	}
	b, err := cfg.loadDocument(args[1])
	if err != nil {
		return err
	}
	if !writeDiff(cc.Out, cfg.colors(cc.Out), args[0], args[1], string(a.Bytes()), string(b.Bytes())) {
		return nil
	}
	return cli.ExitCodeErr(1)
}

// writeDiff prints a line diff of from and to and reports whether they
// differ.
func writeDiff(w io.Writer, p *palette, fromName, toName, from, to string) bool {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	changed := false
	for _, d := range diffs {
		if d.Type != diffpatch.DiffEqual {
			changed = true
			break
		}
	}
	if !changed {
		return false
	}

	fmt.Fprintf(w, "%s\n%s\n", p.del("--- %s", fromName), p.add("+++ %s", toName))
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			line = strings.TrimSuffix(line, "\n")
			switch d.Type {
			case diffpatch.DiffInsert:
				fmt.Fprintln(w, p.add("+%s", line))
			case diffpatch.DiffDelete:
				fmt.Fprintln(w, p.del("-%s", line))
			default:
				fmt.Fprintf(w, " %s\n", line)
			}
		}
	}
	return true
}
