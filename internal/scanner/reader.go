package scanner

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/tools/go/packages"
)

var ErrNoPackages = errors.New("scanner: no packages matched")

var genCodeRe = regexp.MustCompile(`(?m)^//\s*Code generated .* DO NOT EDIT\.$`)

type FileUnit struct {
	Filename  string // absolute path
	RelPath   string // posix rel path from RepoRoot
	File      *ast.File
	Fset      *token.FileSet
	Pkg       *packages.Package
	Src       []byte // exact file bytes; edit offsets index into this
	Generated bool
}

type SourceReader interface {
	List() ([]FileUnit, error)
}

type GoPackagesReader struct {
	RepoRoot   string
	Patterns   []string
	Tests      bool
	ExcludeREs []*regexp.Regexp
	Env        []string
	Debug      bool
}

func NewGoPackagesReader(repoRoot string, excludeCSV string, tests, debug bool) *GoPackagesReader {
	return &GoPackagesReader{
		RepoRoot:   repoRoot,
		Patterns:   []string{"./..."},
		Tests:      tests,
		ExcludeREs: compileExcludeRegexes(excludeCSV),
		Env:        append(os.Environ(), "GOWORK=off", "GOFLAGS="),
		Debug:      debug,
	}
}

// LoadMode type-checks the whole import graph from source so objects from
// different packages carry real source positions.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedModule

func (r *GoPackagesReader) Load() ([]*packages.Package, error) {
	cfg := &packages.Config{
		Mode:  LoadMode,
		Dir:   r.RepoRoot,
		Env:   r.Env,
		Tests: r.Tests,
	}
	pkgs, err := packages.Load(cfg, r.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", r.RepoRoot, err)
	}
	if len(pkgs) == 0 {
		return nil, ErrNoPackages
	}
	return pkgs, nil
}

// List returns one unit per physical file. A file shared by several package
// variants (p and p [p.test]) is listed once, for the first variant.
func (r *GoPackagesReader) List() ([]FileUnit, error) {
	pkgs, err := r.Load()
	if err != nil {
		return nil, err
	}
	return r.Units(pkgs), nil
}

func (r *GoPackagesReader) Units(pkgs []*packages.Package) []FileUnit {
	absRoot, _ := filepath.Abs(r.RepoRoot)
	seen := make(map[string]bool)
	var out []FileUnit
	for _, p := range pkgs {
		for i, f := range p.Syntax {
			if f == nil || i >= len(p.CompiledGoFiles) {
				continue
			}
			fn := p.CompiledGoFiles[i]
			if seen[fn] {
				continue
			}
			rel := relPosix(absRoot, fn)
			if strings.HasPrefix(rel, "../") || shouldExclude(rel, r.ExcludeREs) {
				continue
			}
			b, err := os.ReadFile(fn)
			if err != nil {
				// cgo-generated or cached files have no stable on-disk source
				continue
			}
			seen[fn] = true
			out = append(out, FileUnit{
				Filename:  fn,
				RelPath:   rel,
				File:      f,
				Fset:      p.Fset,
				Pkg:       p,
				Src:       b,
				Generated: genCodeRe.Match(b),
			})
		}
	}
	return out
}

// --- helpers (shared) ---

func compileExcludeRegexes(csv string) []*regexp.Regexp {
	var res []*regexp.Regexp
	for _, p := range splitCSV(csv) {
		if re, err := regexp.Compile(p); err == nil {
			res = append(res, re)
		}
	}
	return res
}

func shouldExclude(rel string, res []*regexp.Regexp) bool {
	for _, r := range res {
		if r.MatchString(rel) {
			return true
		}
	}
	return false
}

func relPosix(root, filename string) string {
	rel, err := filepath.Rel(root, filename)
	if err != nil {
		return toPosix(filename)
	}
	return toPosix(rel)
}

func toPosix(p string) string { return strings.ReplaceAll(p, string(filepath.Separator), "/") }

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
