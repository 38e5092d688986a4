// Package modinfo reads the go.mod of the module being rewritten.
package modinfo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/mod/modfile"
)

var (
	ErrNoModule        = errors.New("modinfo: no go.mod found")
	ErrToolchainTooOld = errors.New("modinfo: module needs a newer Go")
)

// defaultGoVersion is what the go command assumes for a go.mod without a go
// directive.
const defaultGoVersion = "1.16"

var (
	leadingVersionRe   = regexp.MustCompile(`^\d+(\.\d+){0,2}`)
	toolchainVersionRe = regexp.MustCompile(`go(\d+(\.\d+){0,2})`)
)

type Info struct {
	Dir       string // directory holding go.mod
	Path      string // module path
	GoVersion string // go directive, defaultGoVersion when absent
}

// Find locates the go.mod governing dir, walking up the tree.
func Find(dir string) (Info, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Info{}, err
	}
	for d := abs; ; {
		gomod := filepath.Join(d, "go.mod")
		if _, err := os.Stat(gomod); err == nil {
			return Read(gomod)
		}
		parent := filepath.Dir(d)
		if parent == d {
			return Info{}, fmt.Errorf("%w above %s", ErrNoModule, abs)
		}
		d = parent
	}
}

func Read(gomod string) (Info, error) {
	data, err := os.ReadFile(gomod)
	if err != nil {
		return Info{}, err
	}
	return Parse(gomod, data)
}

func Parse(gomod string, data []byte) (Info, error) {
	f, err := modfile.ParseLax(gomod, data, nil)
	if err != nil {
		return Info{}, fmt.Errorf("parse %s: %w", gomod, err)
	}
	info := Info{Dir: filepath.Dir(gomod), GoVersion: defaultGoVersion}
	if f.Module != nil {
		info.Path = f.Module.Mod.Path
	}
	if f.Go != nil && f.Go.Version != "" {
		info.GoVersion = f.Go.Version
	}
	return info, nil
}

// CheckToolchain fails when the go directive is newer than toolchain, a
// runtime.Version string such as "go1.24.2". The packages are type-checked
// in process, so a module written for a later language cannot be loaded.
// Versions that cannot be parsed pass.
func (i Info) CheckToolchain(toolchain string) error {
	want := parseVersion(leadingVersionRe.FindString(i.GoVersion))
	m := toolchainVersionRe.FindStringSubmatch(toolchain)
	if want == nil || m == nil {
		return nil
	}
	have := parseVersion(m[1])
	if have == nil || !want.GreaterThan(have) {
		return nil
	}
	return fmt.Errorf("%w: go.mod says go %s, built with %s", ErrToolchainTooOld, i.GoVersion, toolchain)
}

func parseVersion(raw string) *semver.Version {
	if raw == "" {
		return nil
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil
	}
	return v
}
