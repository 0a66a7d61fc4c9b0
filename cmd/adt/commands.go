package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "adt").
		WithSynopsis("adt [opts] command [opts]").
		WithDescription("adt is a tool for inspecting, editing and checking AUTOSAR XML files.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return adtMain(cfg, cc, args)
		}).
		WithSubs(
			TreeCommand(cfg),
			PropsCommand(cfg),
			PortsCommand(cfg),
			SetCommand(cfg),
			TextCommand(cfg),
			AddCommand(cfg),
			RmCommand(cfg),
			FmtCommand(cfg),
			CheckCommand(cfg),
			QueryCommand(cfg),
			MergeCommand(cfg),
			IndexCommand(cfg),
			ExportCommand(cfg),
			DiffCommand(cfg),
			InitCommand(cfg))
}

func TreeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &TreeConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Tree, "tree").
		WithAliases("t").
		WithSynopsis("tree [-depth n] [-p] <file>").
		WithDescription("print the element tree with display names and leaf values").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return tree(cfg, cc, args)
		})
}

func PropsCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PropsConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Props, "props").
		WithAliases("p").
		WithSynopsis("props [-y] <file> <path>").
		WithDescription("print the property table (tag, attributes, text) of the element at an index path such as /0/2/1").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return props(cfg, cc, args)
		})
}

func PortsCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PortsConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Ports, "ports").
		WithSynopsis("ports [-y] <file>").
		WithDescription("list port prototypes with their kind, interface and com-specs").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return ports(cfg, cc, args)
		})
}

func editCommand(mainCfg *MainConfig, name, synopsis, desc string, run func(*EditConfig, *cli.Context, []string) error) *cli.Command {
	cfg := &EditConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, name).
		WithSynopsis(synopsis).
		WithDescription(desc).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return run(cfg, cc, args)
		})
}

func SetCommand(mainCfg *MainConfig) *cli.Command {
	return editCommand(mainCfg, "set", "set [-o out] <file> <path> <field> <value>",
		"set an attribute, or the text with field Text, of the element at path", set)
}

func TextCommand(mainCfg *MainConfig) *cli.Command {
	return editCommand(mainCfg, "text", "text [-o out] <file> <path> <text>",
		"replace the text of the element at path", text)
}

func AddCommand(mainCfg *MainConfig) *cli.Command {
	return editCommand(mainCfg, "add", "add [-o out] <file> <path> <tag>",
		"append a new child element to the element at path and print its path", add)
}

func RmCommand(mainCfg *MainConfig) *cli.Command {
	return editCommand(mainCfg, "rm", "rm [-o out] <file> <path>",
		"remove the element at path and everything below it", rm)
}

func FmtCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &FmtConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Fmt, "fmt").
		WithAliases("f").
		WithSynopsis("fmt [-d] [-l] <files...>").
		WithDescription("rewrite files in the canonical layout").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return fmtFiles(cfg, cc, args)
		})
}

func CheckCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CheckConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Check, "check").
		WithAliases("c").
		WithSynopsis("check [-schema xsd] [-rules file.cue] <files...>").
		WithDescription(checkDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return check(cfg, cc, args)
		})
}

const checkDescription = `check reports problems in ARXML files.

Each file is checked against the CUE element rules: the built-in rules, then
/usr/share/adt/arxml_rules.cue, ~/.local/share/adt/arxml_rules.cue,
<root>/.arxml_rules.cue and finally the -rules file (or [rules] file of the
configuration).

References are resolved across all given files.

When an XML schema is given with -schema, or configured as [validator]
schema, every file is also validated with xmllint.`

func QueryCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &QueryConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Query, "query").
		WithAliases("q").
		WithSynopsis("query [-c] <expr> <files...>").
		WithDescription(queryDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return queryFiles(cfg, cc, args)
		})
}

const queryDescription = `query prints the elements for which expr is true.

Variables: tag, text, name, package, attrs, depth, path, arpath, kind, leaf.
Functions: hasChild(substr), leafName(path).

  adt query 'kind == "R-PORT sender-receiver"' *.arxml
  adt query 'tag endsWith "-TREF" && leafName(text) == "SpeedIf"' *.arxml`

func MergeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &MergeConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Merge, "merge").
		WithAliases("m").
		WithSynopsis("merge [-o out] <files...>").
		WithDescription("merge files into one document, joining packages with the same path").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return merge(cfg, cc, args)
		})
}

func IndexCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &IndexConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Index, "index").
		WithAliases("i").
		WithSynopsis("index [-p] [dir]").
		WithDescription("index every .arxml file below dir and report cross-file problems").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return indexDir(cfg, cc, args)
		})
}

func ExportCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ExportConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Export, "export").
		WithSynopsis("export -db out.db <files...>").
		WithDescription("export elements, attributes and references to a SQLite database").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return export(cfg, cc, args)
		})
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Diff, "diff").
		WithAliases("d").
		WithSynopsis("diff <a> <b>").
		WithDescription("diff two files after normalizing their layout").
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
}

func InitCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &InitConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Init, "init").
		WithSynopsis("init <project_name>").
		WithDescription("create a project skeleton with configuration, rules and a first package").
		WithRun(func(cc *cli.Context, args []string) error {
			return initProject(cfg, cc, args)
		})
}
