package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/arxml-community/arxml-dev-tools/internal/config"
	"github.com/arxml-community/arxml-dev-tools/internal/document"
	"github.com/arxml-community/arxml-dev-tools/internal/formatter"
	"github.com/arxml-community/arxml-dev-tools/internal/logger"
	"github.com/arxml-community/arxml-dev-tools/internal/parser"
	"github.com/arxml-community/arxml-dev-tools/internal/schema"
	"github.com/arxml-community/arxml-dev-tools/internal/session"
	"github.com/arxml-community/arxml-dev-tools/internal/validator"
)

type MainConfig struct {
	Root    string `cli:"name=C aliases=root desc='project root holding .adt.toml and .arxml_rules.cue'"`
	Color   bool   `cli:"name=color desc='color output even when not on a terminal'"`
	NoColor bool   `cli:"name=nocolor desc='never color output'"`
	Indent  int    `cli:"name=indent desc='spaces per indentation level when writing'"`

	Config *config.Config
	Main   *cli.Command
}

func (cfg *MainConfig) projectRoot() string {
	if cfg.Root == "" {
		return "."
	}
	return cfg.Root
}

// load reads the layered configuration once.
func (cfg *MainConfig) load() error {
	if cfg.Config != nil {
		return nil
	}
	c, err := config.LoadFullConfig(cfg.projectRoot())
	if err != nil {
		return err
	}
	if cfg.Indent > 0 {
		c.Format.Indent = cfg.Indent
	}
	cfg.Config = c
	return nil
}

func (cfg *MainConfig) formatOptions(file string) formatter.Options {
	return formatter.Options{
		Indent:        cfg.Config.Format.Indent,
		KeepMixedText: cfg.Config.Format.KeepMixedText,
		OnDroppedText: func(e *parser.Element) {
			logger.Printf("%s:%d:%d: warning: text of <%s> dropped, it has child elements\n",
				file, e.Pos.Line, e.Pos.Column, e.Tag)
		},
	}
}

func (cfg *MainConfig) newSession(file string) *session.Session {
	v := validator.NewXMLLint(cfg.Config.Validator.Command, cfg.Config.Timeout())
	s := session.New(v, cfg.formatOptions(file))
	if cfg.Config.Validator.Schema != "" {
		s.SetSchema(cfg.Config.Validator.Schema)
	}
	return s
}

// openSession loads file into a new session.
func (cfg *MainConfig) openSession(file string) (*session.Session, error) {
	if err := cfg.load(); err != nil {
		return nil, err
	}
	s := cfg.newSession(file)
	if err := s.Open(file); err != nil {
		return nil, err
	}
	return s, nil
}

func (cfg *MainConfig) loadDocument(file string) (*document.Document, error) {
	if err := cfg.load(); err != nil {
		return nil, err
	}
	doc := document.New()
	doc.Format = cfg.formatOptions(file)
	if file == "-" {
		if err := doc.Read(os.Stdin); err != nil {
			return nil, fmt.Errorf("error reading stdin: %w", err)
		}
		return doc, nil
	}
	if err := doc.Load(file); err != nil {
		return nil, err
	}
	return doc, nil
}

func (cfg *MainConfig) loadSchema(extra string) *schema.Schema {
	if extra == "" && cfg.Config != nil && cfg.Config.Rules.File != "" {
		extra = cfg.Config.Rules.File
		if !filepath.IsAbs(extra) {
			extra = filepath.Join(cfg.projectRoot(), extra)
		}
	}
	s, errs := schema.LoadFullSchema(cfg.projectRoot(), extra)
	for _, err := range errs {
		logger.Printf("rules: %v\n", err)
	}
	return s
}

// colors returns the palette for w, which is plain unless w is a terminal
// or -color is given.
func (cfg *MainConfig) colors(w io.Writer) *palette {
	on := cfg.Color
	if !on && !cfg.NoColor {
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			on = true
		}
	}
	p := &palette{}
	if !on {
		plain := fmt.Sprintf
		p.tag, p.name, p.value, p.kind, p.path = plain, plain, plain, plain, plain
		p.add, p.del, p.warn, p.err = plain, plain, plain, plain
		return p
	}
	mk := func(attrs ...color.Attribute) func(string, ...any) string {
		c := color.New(attrs...)
		c.EnableColor()
		return c.SprintfFunc()
	}
	p.tag = color.RGB(128, 168, 196).SprintfFunc()
	p.name = mk(color.Bold)
	p.value = color.CyanString
	p.kind = color.RGB(196, 96, 16).SprintfFunc()
	p.path = mk(color.Faint)
	p.add = color.GreenString
	p.del = color.RedString
	p.warn = color.YellowString
	p.err = mk(color.FgRed, color.Bold)
	if cfg.Color {
		// fatih/color disables itself when stdout is not a terminal.
		color.NoColor = false
	}
	return p
}

type palette struct {
	tag, name, value, kind, path func(string, ...any) string
	add, del, warn, err          func(string, ...any) string
}

type TreeConfig struct {
	*MainConfig
	Depth int  `cli:"name=depth desc='maximum depth to print, 0 for all'"`
	Paths bool `cli:"name=p aliases=paths desc='prefix rows with their index path'"`

	Tree *cli.Command
}

type PropsConfig struct {
	*MainConfig
	YAML bool `cli:"name=y aliases=yaml desc='print as yaml'"`

	Props *cli.Command
}

type PortsConfig struct {
	*MainConfig
	YAML bool `cli:"name=y aliases=yaml desc='print as yaml'"`

	Ports *cli.Command
}

type EditConfig struct {
	*MainConfig
	Out string `cli:"name=o desc='write the result to this file instead of the input'"`

	Command *cli.Command
}

type FmtConfig struct {
	*MainConfig
	Diff bool `cli:"name=d aliases=diff desc='print a diff instead of rewriting files'"`
	List bool `cli:"name=l aliases=list desc='list files whose formatting differs'"`

	Fmt *cli.Command
}

type CheckConfig struct {
	*MainConfig
	Schema string `cli:"name=schema desc='XML schema (xsd) to validate against with xmllint'"`
	Rules  string `cli:"name=rules desc='extra CUE rules file'"`
	NoLint bool   `cli:"name=nolint desc='skip the CUE rule checks'"`

	Check *cli.Command
}

type QueryConfig struct {
	*MainConfig
	Count bool `cli:"name=c aliases=count desc='only print the number of matches'"`

	Query *cli.Command
}

type MergeConfig struct {
	*MainConfig
	Out string `cli:"name=o desc='output file (default stdout)'"`

	Merge *cli.Command
}

type IndexConfig struct {
	*MainConfig
	Paths bool `cli:"name=p aliases=paths desc='list every AUTOSAR path'"`

	Index *cli.Command
}

type ExportConfig struct {
	*MainConfig
	DB string `cli:"name=db desc='SQLite database file'"`

	Export *cli.Command
}

type DiffConfig struct {
	*MainConfig

	Diff *cli.Command
}

type InitConfig struct {
	*MainConfig

	Init *cli.Command
}
