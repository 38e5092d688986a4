// Package gotreetest type-checks small Go programs in process, producing the
// file units the scanner would load, without running the go command.
package gotreetest

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"golang.org/x/tools/go/packages"

	"github.com/vd09-projects/go-param-elide/internal/scanner"
)

type File struct {
	Name string
	Src  string
}

type Package struct {
	Path  string
	Files []File
}

// Single is a one-file package example.com/p in p.go.
func Single(src string) Package {
	return Package{Path: "example.com/p", Files: []File{{Name: "p.go", Src: src}}}
}

type importerFunc func(path string) (*types.Package, error)

func (f importerFunc) Import(path string) (*types.Package, error) { return f(path) }

// Program checks packages in the order they are added; later packages may
// import earlier ones by path. Type errors are tolerated.
type Program struct {
	Fset    *token.FileSet
	Units   []scanner.FileUnit
	checked map[string]*types.Package
}

func NewProgram() *Program {
	return &Program{Fset: token.NewFileSet(), checked: make(map[string]*types.Package)}
}

// Forget drops already checked packages from the importer, so the next Add
// of the same path builds a separate variant.
func (p *Program) Forget() {
	p.checked = make(map[string]*types.Package)
}

func (p *Program) Add(t testing.TB, pkg Package) *packages.Package {
	t.Helper()
	var files []*ast.File
	var names []string
	for _, f := range pkg.Files {
		af, err := parser.ParseFile(p.Fset, f.Name, f.Src, parser.ParseComments)
		if err != nil {
			t.Fatalf("parse %s: %v", f.Name, err)
		}
		files = append(files, af)
		names = append(names, f.Name)
	}
	info := &types.Info{
		Types:        make(map[ast.Expr]types.TypeAndValue),
		Defs:         make(map[*ast.Ident]types.Object),
		Uses:         make(map[*ast.Ident]types.Object),
		Implicits:    make(map[ast.Node]types.Object),
		Selections:   make(map[*ast.SelectorExpr]*types.Selection),
		Scopes:       make(map[ast.Node]*types.Scope),
		Instances:    make(map[*ast.Ident]types.Instance),
		FileVersions: make(map[*ast.File]string),
	}
	conf := types.Config{
		Importer: importerFunc(func(path string) (*types.Package, error) {
			if tp, ok := p.checked[path]; ok {
				return tp, nil
			}
			return nil, fmt.Errorf("unknown import %q", path)
		}),
		Error: func(error) {},
	}
	tp, _ := conf.Check(pkg.Path, p.Fset, files, info)
	p.checked[pkg.Path] = tp

	lp := &packages.Package{
		ID:              pkg.Path,
		Name:            tp.Name(),
		PkgPath:         pkg.Path,
		Fset:            p.Fset,
		Syntax:          files,
		Types:           tp,
		TypesInfo:       info,
		CompiledGoFiles: names,
		GoFiles:         names,
	}
	for i, f := range files {
		p.Units = append(p.Units, scanner.FileUnit{
			Filename: names[i],
			RelPath:  names[i],
			File:     f,
			Fset:     p.Fset,
			Pkg:      lp,
			Src:      []byte(pkg.Files[i].Src),
		})
	}
	return lp
}

// Load checks pkgs in order and returns their file units.
func Load(t testing.TB, pkgs ...Package) []scanner.FileUnit {
	t.Helper()
	p := NewProgram()
	for _, pkg := range pkgs {
		p.Add(t, pkg)
	}
	return p.Units
}
