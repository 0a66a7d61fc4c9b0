package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	"github.com/arxml-community/arxml-dev-tools/internal/document"
	"github.com/arxml-community/arxml-dev-tools/internal/logger"
	"github.com/arxml-community/arxml-dev-tools/internal/session"
)

// edit opens file, applies fn and saves the result to -o or back to file.
func edit(cfg *EditConfig, file string, fn func(s *session.Session) error) error {
	s, err := cfg.openSession(file)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	if cfg.Out != "" {
		return s.SaveAs(cfg.Out)
	}
	return s.Save()
}

func set(cfg *EditConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Command, cc, args, 4, 4)
	if err != nil {
		return err
	}
	path, err := parseIndexPath(args[1])
	if err != nil {
		return err
	}
	return edit(cfg, args[0], func(s *session.Session) error {
		return s.SetProperty(path, args[2], args[3])
	})
}

func text(cfg *EditConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Command, cc, args, 3, 3)
	if err != nil {
		return err
	}
	path, err := parseIndexPath(args[1])
	if err != nil {
		return err
	}
	return edit(cfg, args[0], func(s *session.Session) error {
		return s.SetText(path, args[2])
	})
}

func add(cfg *EditConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Command, cc, args, 3, 3)
	if err != nil {
		return err
	}
	path, err := parseIndexPath(args[1])
	if err != nil {
		return err
	}
	return edit(cfg, args[0], func(s *session.Session) error {
		child, err := s.AddChild(path, args[2])
		if err != nil {
			return err
		}
		fmt.Fprintln(cc.Out, document.FormatPath(child))
		return nil
	})
}

func rm(cfg *EditConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Command, cc, args, 2, 2)
	if err != nil {
		return err
	}
	path, err := parseIndexPath(args[1])
	if err != nil {
		return err
	}
	return edit(cfg, args[0], func(s *session.Session) error {
		if err := s.Delete(path); err != nil {
			return err
		}
		logger.Printf("removed %s from %s\n", document.FormatPath(path), args[0])
		return nil
	})
}
