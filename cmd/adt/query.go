package main

import (
	"fmt"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/arxml-community/arxml-dev-tools/internal/builder"
	"github.com/arxml-community/arxml-dev-tools/internal/document"
	"github.com/arxml-community/arxml-dev-tools/internal/logger"
	"github.com/arxml-community/arxml-dev-tools/internal/query"
	"github.com/arxml-community/arxml-dev-tools/internal/semantic"
	"github.com/arxml-community/arxml-dev-tools/internal/store"
)

func queryFiles(cfg *QueryConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Query, cc, args, 2, -1)
	if err != nil {
		return err
	}
	q, err := query.Compile(args[0])
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	p := cfg.colors(cc.Out)
	total := 0
	for _, file := range args[1:] {
		doc, err := cfg.loadDocument(file)
		if err != nil {
			return err
		}
		matches, err := q.Select(doc.Root())
		if err != nil {
			return err
		}
		total += len(matches)
		if cfg.Count {
			continue
		}
		for _, m := range matches {
			fmt.Fprintf(cc.Out, "%s:%d: %s %s %s\n", file, m.Pos.Line,
				p.path("%s", document.FormatPath(document.IndexPath(m))),
				p.tag("%s", m.Tag), p.name("%s", semantic.DisplayName(m)))
		}
	}
	if cfg.Count {
		fmt.Fprintln(cc.Out, total)
	}
	return nil
}

func merge(cfg *MergeConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Merge, cc, args, 1, -1)
	if err != nil {
		return err
	}
	if err := cfg.load(); err != nil {
		return err
	}
	b := builder.NewBuilder(args)
	b.Format = cfg.formatOptions("merge")

	out := cc.Out
	if cfg.Out != "" {
		f, err := os.Create(cfg.Out)
		if err != nil {
			return fmt.Errorf("error creating output file %s: %w", cfg.Out, err)
		}
		defer f.Close()
		out = f
	}
	if err := b.Build(out); err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}
	return nil
}

func export(cfg *ExportConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Export, cc, args, 1, -1)
	if err != nil {
		return err
	}
	if cfg.DB == "" {
		return fmt.Errorf("%w: -db is required", cli.ErrUsage)
	}
	st, err := store.NewStore(cfg.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	for _, file := range args {
		doc, err := cfg.loadDocument(file)
		if err != nil {
			return err
		}
		if err := st.Export(file, doc.Root()); err != nil {
			return fmt.Errorf("error exporting %s: %w", file, err)
		}
		n, err := st.Count(file)
		if err != nil {
			return err
		}
		logger.Printf("Exported %d elements of %s\n", n, file)
	}
	dangling, err := st.DanglingRefs()
	if err != nil {
		return err
	}
	for _, ref := range dangling {
		logger.Printf("warning: no element for reference %s\n", ref)
	}
	return nil
}
