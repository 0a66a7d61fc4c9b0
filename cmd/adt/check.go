package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/scott-cotton/cli"

	"github.com/arxml-community/arxml-dev-tools/internal/index"
	"github.com/arxml-community/arxml-dev-tools/internal/logger"
	"github.com/arxml-community/arxml-dev-tools/internal/validator"
)

func check(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Check, cc, args, 1, -1)
	if err != nil {
		return err
	}
	if err := cfg.load(); err != nil {
		return err
	}
	rules := cfg.loadSchema(cfg.Rules)

	idx := index.New()
	var diags []validator.Diagnostic
	var invalid []string
	for _, file := range args {
		s, err := cfg.openSession(file)
		if err != nil {
			logger.Printf("%s: %v\n", file, err)
			diags = append(diags, validator.Diagnostic{Level: validator.LevelError, File: file, Code: "load", Message: err.Error()})
			continue
		}
		root := s.Document().Root()
		idx.AddFile(file, root)

		if !cfg.NoLint {
			diags = append(diags, validator.NewLinter(rules, file).Lint(root)...)
		}

		xsd := cfg.Schema
		if xsd == "" {
			xsd = s.Schema()
		}
		if xsd == "" {
			continue
		}
		res, err := s.Run(context.Background(), xsd)
		if err != nil {
			return err
		}
		logValidation(file, xsd, res)
		if !res.Valid() {
			invalid = append(invalid, fmt.Sprintf("%s:\n%s", file, strings.TrimRight(res.Diagnostic, "\n")))
		}
	}
	diags = append(diags, referenceDiagnostics(idx)...)

	p := cfg.colors(cc.Out)
	writeDiagnostics(cc.Out, p, diags)
	for _, msg := range invalid {
		fmt.Fprintln(cc.Out, p.err("%s", msg))
	}

	errs := 0
	for _, d := range diags {
		if d.Level == validator.LevelError {
			errs++
		}
	}
	errs += len(invalid)
	if len(diags)+len(invalid) > 0 {
		logger.Printf("Found %d issues.\n", len(diags)+len(invalid))
	} else {
		logger.Println("No issues found.")
	}
	if errs > 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func logValidation(file, schema string, res validator.Result) {
	logger.Slog().Info("validated",
		"id", res.ID,
		"file", file,
		"schema", schema,
		"valid", res.Valid(),
		"exit", res.ExitCode,
		"timed_out", res.TimedOut,
		"duration", res.Duration)
}

// referenceDiagnostics keeps the cross-file findings of idx that concern
// references, parse errors are reported while loading.
func referenceDiagnostics(idx *index.Index) []validator.Diagnostic {
	var res []validator.Diagnostic
	for _, d := range idx.Diagnostics() {
		if d.Code == "parse_error" {
			continue
		}
		res = append(res, d)
	}
	return res
}

func writeDiagnostics(w io.Writer, p *palette, diags []validator.Diagnostic) {
	for _, d := range diags {
		level := p.err("%s", d.Level)
		if d.Level == validator.LevelWarning {
			level = p.warn("%s", d.Level)
		}
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", d.File, d.Position.Line, d.Position.Column, level, d.Message)
	}
}

func indexDir(cfg *IndexConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Index, cc, args, 0, 1)
	if err != nil {
		return err
	}
	dir := cfg.projectRoot()
	if len(args) == 1 {
		dir = args[0]
	}
	idx := index.New()
	start := time.Now()
	if err := idx.ScanDirectory(dir); err != nil {
		return err
	}
	paths := idx.Paths()
	logger.Slog().Info("indexed", "dir", dir, "files", len(idx.Files()), "paths", len(paths), "duration", time.Since(start))

	if cfg.Paths {
		for _, path := range paths {
			e, _ := idx.Resolve(path)
			fmt.Fprintf(cc.Out, "%s\t%s\t%s\n", path, e.Tag(), e.File)
		}
	}
	diags := idx.Diagnostics()
	writeDiagnostics(cc.Out, cfg.colors(cc.Out), diags)
	for _, d := range diags {
		if d.Level == validator.LevelError {
			return cli.ExitCodeErr(1)
		}
	}
	return nil
}
