package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/scott-cotton/cli"
	"gopkg.in/yaml.v3"

	"github.com/arxml-community/arxml-dev-tools/internal/document"
	"github.com/arxml-community/arxml-dev-tools/internal/semantic"
	"github.com/arxml-community/arxml-dev-tools/internal/session"
)

func tree(cfg *TreeConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Tree, cc, args, 1, 1)
	if err != nil {
		return err
	}
	s, err := cfg.openSession(args[0])
	if err != nil {
		return err
	}
	writeRows(cc.Out, cfg.colors(cc.Out), s.Rows(), cfg.Depth, cfg.Paths)
	return nil
}

func writeRows(w io.Writer, p *palette, rows []session.Row, maxDepth int, paths bool) {
	for _, r := range rows {
		if maxDepth > 0 && r.Depth > maxDepth {
			continue
		}
		var sb strings.Builder
		if paths {
			sb.WriteString(p.path("%-12s ", document.FormatPath(r.Path)))
		}
		sb.WriteString(strings.Repeat("  ", r.Depth))
		sb.WriteString(p.tag("%s", r.Tag))
		if r.Label != r.Tag {
			sb.WriteString(" ")
			sb.WriteString(p.name("%s", r.Label))
		}
		if r.Value != "" {
			sb.WriteString(" = ")
			sb.WriteString(p.value("%s", r.Value))
		}
		if r.Kind != semantic.PortNone {
			sb.WriteString(" ")
			sb.WriteString(p.kind("[%s]", r.Kind))
		}
		fmt.Fprintln(w, sb.String())
	}
}

func props(cfg *PropsConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Props, cc, args, 2, 2)
	if err != nil {
		return err
	}
	path, err := parseIndexPath(args[1])
	if err != nil {
		return err
	}
	s, err := cfg.openSession(args[0])
	if err != nil {
		return err
	}
	rows, err := s.Properties(path)
	if err != nil {
		return err
	}
	if cfg.YAML {
		return yaml.NewEncoder(cc.Out).Encode(rows)
	}
	tw := tabwriter.NewWriter(cc.Out, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		mark := ""
		if r.ReadOnly {
			mark = " (read-only)"
		}
		fmt.Fprintf(tw, "%s\t%s%s\n", r.Field, r.Value, mark)
	}
	return tw.Flush()
}

type portView struct {
	Name      string   `yaml:"name"`
	Path      string   `yaml:"path"`
	ARPath    string   `yaml:"arpath,omitempty"`
	Kind      string   `yaml:"kind"`
	Interface string   `yaml:"interface,omitempty"`
	Dest      string   `yaml:"dest,omitempty"`
	ComSpecs  []string `yaml:"comSpecs,omitempty"`
}

func portViews(doc *document.Document) []portView {
	var res []portView
	for _, port := range semantic.Ports(doc.Root()) {
		v := portView{
			Name:      port.Name,
			Path:      document.FormatPath(document.IndexPath(port.Element)),
			ARPath:    semantic.ARPath(port.Element),
			Kind:      port.Kind.String(),
			Interface: port.Interface.Path,
			Dest:      port.Interface.Dest,
		}
		specs := semantic.DataElementComSpecs(port.Element)
		if port.Kind.IsClientServer() {
			specs = semantic.OperationComSpecs(port.Element)
		}
		for name := range specs {
			v.ComSpecs = append(v.ComSpecs, name)
		}
		sort.Strings(v.ComSpecs)
		res = append(res, v)
	}
	return res
}

func ports(cfg *PortsConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Ports, cc, args, 1, 1)
	if err != nil {
		return err
	}
	doc, err := cfg.loadDocument(args[0])
	if err != nil {
		return err
	}
	views := portViews(doc)
	if cfg.YAML {
		return yaml.NewEncoder(cc.Out).Encode(views)
	}
	p := cfg.colors(cc.Out)
	tw := tabwriter.NewWriter(cc.Out, 0, 4, 2, ' ', 0)
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.path("%s", v.Path), p.name("%s", v.Name),
			p.kind("%s", v.Kind), v.Interface)
		for _, spec := range v.ComSpecs {
			fmt.Fprintf(tw, "\t  %s\t\t\n", p.value("%s", spec))
		}
	}
	return tw.Flush()
}
