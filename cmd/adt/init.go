package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/scott-cotton/cli"

	"github.com/arxml-community/arxml-dev-tools/internal/config"
	"github.com/arxml-community/arxml-dev-tools/internal/logger"
	"github.com/arxml-community/arxml-dev-tools/internal/schema"
)

// shortNamePattern matches names usable as the SHORT-NAME of the initial package.
var shortNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func initProject(cfg *InitConfig, cc *cli.Context, args []string) error {
	args, err := parseArgs(cfg.Init, cc, args, 1, 1)
	if err != nil {
		return err
	}
	projectName := args[0]
	if !shortNamePattern.MatchString(projectName) {
		return fmt.Errorf("%w: project name %q is not a valid SHORT-NAME", cli.ErrUsage, projectName)
	}
	root := cfg.projectRoot()
	if err := os.MkdirAll(filepath.Join(root, "src"), 0755); err != nil {
		return fmt.Errorf("error creating project directories: %w", err)
	}

	files := map[string]string{
		config.FileName: "[validator]\ncommand = \"xmllint\"\ntimeout_seconds = 10\nschema = \"\"\n\n[format]\nindent = 4\nkeep_mixed_text = false\n",
		schema.ProjectFileName: "package schema\n\n// Add project-specific element rules here, e.g.\n// elements: \"ECU-INSTANCE\": #Identifiable\n",
		filepath.Join("src", projectName+".arxml"): `<?xml version="1.0" encoding="UTF-8"?>
<AUTOSAR xmlns="http://autosar.org/schema/r4.0" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
    <AR-PACKAGES>
        <AR-PACKAGE>
            <SHORT-NAME>` + projectName + `</SHORT-NAME>
            <ELEMENTS/>
        </AR-PACKAGE>
    </AR-PACKAGES>
</AUTOSAR>
`,
	}

	for path, content := range files {
		full := filepath.Join(root, path)
		if _, err := os.Stat(full); err == nil {
			logger.Printf("Keeping existing %s\n", full)
			continue
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			return fmt.Errorf("error creating file %s: %w", full, err)
		}
		logger.Printf("Created %s\n", full)
	}

	logger.Printf("Project '%s' initialized successfully.\n", projectName)
	return nil
}
