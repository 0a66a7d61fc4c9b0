// Package index maintains a cross-file view of an ARXML project: every
// identifiable element by its AUTOSAR path, and every reference element with
// the element it resolves to.
package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/arxml-community/arxml-dev-tools/internal/document"
	"github.com/arxml-community/arxml-dev-tools/internal/logger"
	"github.com/arxml-community/arxml-dev-tools/internal/parser"
	"github.com/arxml-community/arxml-dev-tools/internal/semantic"
	"github.com/arxml-community/arxml-dev-tools/internal/validator"
)

const Extension = ".arxml"

// Entry is an element that has a SHORT-NAME path.
type Entry struct {
	Path    string
	File    string
	Element *parser.Element
}

func (e *Entry) Tag() string {
	return localName(e.Element.Tag)
}

// Reference is a reference element and its target, when resolved.
type Reference struct {
	semantic.Reference
	File    string
	Element *parser.Element
	Target  *Entry
}

type Index struct {
	mu      sync.RWMutex
	files   map[string]*parser.Element
	errs    map[string]error
	entries map[string][]*Entry
	refs    map[string][]*Reference
}

func New() *Index {
	return &Index{
		files:   make(map[string]*parser.Element),
		errs:    make(map[string]error),
		entries: make(map[string][]*Entry),
		refs:    make(map[string][]*Reference),
	}
}

// localName strips a namespace prefix from a tag.
func localName(tag string) string {
	if i := strings.LastIndexByte(tag, ':'); i >= 0 {
		return tag[i+1:]
	}
	return tag
}

// ScanDirectory parses every .arxml file below rootPath and adds it to the
// index. Files that fail to parse are remembered and reported by
// Diagnostics; only a failure to walk the directory is returned.
func (idx *Index) ScanDirectory(rootPath string) error {
	var files []string
	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.EqualFold(filepath.Ext(info.Name()), Extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	type result struct {
		path string
		root *parser.Element
		err  error
	}
	results := make(chan result, len(files))
	var wg sync.WaitGroup
	sem := make(chan struct{}, 8)

	for _, f := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			logger.Printf("indexing: %s [%s]\n", filepath.Base(path), path)
			doc := document.New()
			if err := doc.Load(path); err != nil {
				results <- result{path: path, err: err}
				return
			}
			results <- result{path: path, root: doc.Root()}
		}(f)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		if res.err != nil {
			idx.mu.Lock()
			idx.removeFile(res.path)
			idx.errs[res.path] = res.err
			idx.mu.Unlock()
			continue
		}
		idx.AddFile(res.path, res.root)
	}
	return nil
}

// AddFile indexes root as the content of file, replacing what was indexed
// for file before.
func (idx *Index) AddFile(file string, root *parser.Element) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.removeFile(file)
	if root == nil {
		return
	}
	idx.files[file] = root
	root.Walk(func(e *parser.Element) bool {
		if _, ok := semantic.ShortName(e); ok {
			path := semantic.ARPath(e)
			idx.entries[path] = append(idx.entries[path], &Entry{Path: path, File: file, Element: e})
		}
		if semantic.IsReference(e) {
			idx.refs[file] = append(idx.refs[file], &Reference{
				Reference: semantic.ReferenceOf(e),
				File:      file,
				Element:   e,
			})
		}
		return true
	})
}

func (idx *Index) RemoveFile(file string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeFile(file)
}

func (idx *Index) removeFile(file string) {
	delete(idx.files, file)
	delete(idx.errs, file)
	delete(idx.refs, file)
	for path, list := range idx.entries {
		kept := list[:0]
		for _, e := range list {
			if e.File != file {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(idx.entries, path)
		} else {
			idx.entries[path] = kept
		}
	}
}

// Files lists the indexed files, including those that failed to parse.
func (idx *Index) Files() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var res []string
	for f := range idx.files {
		res = append(res, f)
	}
	for f := range idx.errs {
		res = append(res, f)
	}
	sort.Strings(res)
	return res
}

func (idx *Index) Root(file string) *parser.Element {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.files[file]
}

// Resolve returns the element defined at an AUTOSAR path such as
// /Demo/Interfaces/SpeedIf. When several files define the path the one
// from the first file in name order wins.
func (idx *Index) Resolve(arPath string) (*Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.resolve(arPath)
}

func (idx *Index) resolve(arPath string) (*Entry, bool) {
	list := idx.entries[normalizePath(arPath)]
	if len(list) == 0 {
		return nil, false
	}
	best := list[0]
	for _, e := range list[1:] {
		if e.File < best.File {
			best = e
		}
	}
	return best, true
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// Paths lists every indexed AUTOSAR path in sorted order.
func (idx *Index) Paths() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	res := make([]string, 0, len(idx.entries))
	for p := range idx.entries {
		res = append(res, p)
	}
	sort.Strings(res)
	return res
}

// References returns the reference elements of all files with their targets
// resolved, ordered by file and then document order.
func (idx *Index) References() []*Reference {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var files []string
	for f := range idx.refs {
		files = append(files, f)
	}
	sort.Strings(files)

	var res []*Reference
	for _, f := range files {
		for _, r := range idx.refs[f] {
			resolved := *r
			resolved.Target, _ = idx.resolve(r.Path)
			res = append(res, &resolved)
		}
	}
	return res
}

// Diagnostics reports files that could not be parsed, references whose
// target is not indexed, references whose DEST does not name the tag of
// their target, and elements other than packages defined more than once.
func (idx *Index) Diagnostics() []validator.Diagnostic {
	var diags []validator.Diagnostic

	idx.mu.RLock()
	for file, err := range idx.errs {
		d := validator.Diagnostic{Level: validator.LevelError, Code: "parse_error", File: file, Message: err.Error()}
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			d.Position = parser.Position{Line: pe.Line, Column: pe.Column}
			d.Message = pe.Msg
		}
		diags = append(diags, d)
	}
	for path, list := range idx.entries {
		if len(list) < 2 {
			continue
		}
		sorted := append([]*Entry(nil), list...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })
		for _, e := range sorted[1:] {
			if strings.EqualFold(e.Tag(), "AR-PACKAGE") {
				continue
			}
			diags = append(diags, validator.Diagnostic{
				Level:    validator.LevelError,
				Code:     "duplicate_definition",
				Message:  fmt.Sprintf("'%s' is defined more than once (also in %s)", path, sorted[0].File),
				Position: e.Element.Pos,
				Path:     document.IndexPath(e.Element),
				File:     e.File,
			})
		}
	}
	idx.mu.RUnlock()

	for _, r := range idx.References() {
		switch {
		case r.Target == nil:
			diags = append(diags, validator.Diagnostic{
				Level:    validator.LevelError,
				Code:     "unresolved_reference",
				Message:  fmt.Sprintf("Unresolved reference '%s' (DEST=%s)", r.Path, r.Dest),
				Position: r.Element.Pos,
				Path:     document.IndexPath(r.Element),
				File:     r.File,
			})
		case !strings.EqualFold(r.Dest, r.Target.Tag()):
			diags = append(diags, validator.Diagnostic{
				Level:    validator.LevelWarning,
				Code:     "dest_mismatch",
				Message:  fmt.Sprintf("Reference '%s' has DEST=%s but the target is <%s>", r.Path, r.Dest, r.Target.Tag()),
				Position: r.Element.Pos,
				Path:     document.IndexPath(r.Element),
				File:     r.File,
			})
		}
	}

	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].File != diags[j].File {
			return diags[i].File < diags[j].File
		}
		if diags[i].Position.Line != diags[j].Position.Line {
			return diags[i].Position.Line < diags[j].Position.Line
		}
		return diags[i].Position.Column < diags[j].Position.Column
	})
	return diags
}
