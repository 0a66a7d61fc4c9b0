package schema

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed arxml.cue
var defaultSchemaCUE string

const ProjectFileName = ".arxml_rules.cue"

// Schema is the compiled set of element rules. Rule files are concatenated
// before compilation so that project files can refer to the definitions of
// the built-in file (#Identifiable, #Reference, ...).
type Schema struct {
	Context *cue.Context
	Value   cue.Value
	sources []string
}

func compile(ctx *cue.Context, sources []string) (cue.Value, error) {
	var sb strings.Builder
	sb.WriteString("package schema\n")
	for _, src := range sources {
		for _, line := range strings.Split(src, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "package ") {
				continue
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	v := ctx.CompileString(sb.String())
	if err := v.Err(); err != nil {
		return cue.Value{}, err
	}
	return v, nil
}

// DefaultSchema returns the built-in embedded schema
func DefaultSchema() *Schema {
	ctx := cuecontext.New()
	v, err := compile(ctx, []string{defaultSchemaCUE})
	if err != nil {
		panic(fmt.Sprintf("failed to compile default embedded schema: %v", err))
	}
	return &Schema{Context: ctx, Value: v, sources: []string{defaultSchemaCUE}}
}

// Merge adds the rules in src. On error the schema is unchanged.
func (s *Schema) Merge(src string) error {
	sources := append(append([]string(nil), s.sources...), src)
	v, err := compile(s.Context, sources)
	if err != nil {
		return err
	}
	s.Value = v
	s.sources = sources
	return nil
}

func (s *Schema) MergeFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := s.Merge(string(content)); err != nil {
		return fmt.Errorf("failed to parse schema %s: %w", path, err)
	}
	return nil
}

// Rule returns the rule for elements tagged tag.
func (s *Schema) Rule(tag string) (cue.Value, bool) {
	v := s.Value.LookupPath(cue.MakePath(cue.Str("elements"), cue.Str(tag)))
	if !v.Exists() || v.Err() != nil {
		return cue.Value{}, false
	}
	return v, true
}

// Tags lists the element tags that have rules.
func (s *Schema) Tags() []string {
	var tags []string
	elems := s.Value.LookupPath(cue.MakePath(cue.Str("elements")))
	iter, err := elems.Fields()
	if err != nil {
		return nil
	}
	for iter.Next() {
		tags = append(tags, iter.Selector().Unquoted())
	}
	return tags
}

// LoadFullSchema merges the default rules with system, user and project rule
// files, and finally extra when it is not empty. Unreadable or invalid files
// are returned as errors after the valid ones have been merged.
func LoadFullSchema(projectRoot, extra string) (*Schema, []error) {
	s := DefaultSchema()
	var errs []error

	// 1. System Paths
	sysPaths := []string{
		"/usr/share/adt/arxml_rules.cue",
	}

	home, err := os.UserHomeDir()
	if err == nil {
		sysPaths = append(sysPaths, filepath.Join(home, ".local/share/adt/arxml_rules.cue"))
	}

	for _, path := range sysPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := s.MergeFile(path); err != nil {
			errs = append(errs, err)
		}
	}

	// 2. Project Path
	if projectRoot != "" {
		projectSchemaPath := filepath.Join(projectRoot, ProjectFileName)
		if _, err := os.Stat(projectSchemaPath); err == nil {
			if err := s.MergeFile(projectSchemaPath); err != nil {
				errs = append(errs, err)
			}
		}
	}

	// 3. Explicit rules file
	if extra != "" {
		if err := s.MergeFile(extra); err != nil {
			errs = append(errs, err)
		}
	}

	return s, errs
}
