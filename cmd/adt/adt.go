package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/arxml-community/arxml-dev-tools/internal/document"
)

func adtMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Color && cfg.NoColor {
		return fmt.Errorf("%w: -color and -nocolor are exclusive", cli.ErrUsage)
	}
	if cfg.Indent < 0 {
		return fmt.Errorf("%w: -indent must not be negative", cli.ErrUsage)
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

// parseArgs parses the options of cmd and checks the number of positional
// arguments.
func parseArgs(cmd *cli.Command, cc *cli.Context, args []string, minArgs, maxArgs int) ([]string, error) {
	args, err := cmd.Parse(cc, args)
	if err != nil {
		cmd.Usage(cc, err)
		return nil, cli.ExitCodeErr(1)
	}
	if len(args) < minArgs || (maxArgs >= 0 && len(args) > maxArgs) {
		return nil, fmt.Errorf("%w: wrong number of arguments", cli.ErrUsage)
	}
	return args, nil
}

func parseIndexPath(s string) ([]int, error) {
	p, err := document.ParsePath(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	return p, nil
}
