// Package manifest parses project dependency manifests across ecosystems.
package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Ecosystem names a package ecosystem.
type Ecosystem string

// All ecosystems supported.
const (
	EcosystemNPM   Ecosystem = "npm"
	EcosystemGo    Ecosystem = "go"
	EcosystemCargo Ecosystem = "cargo"
	EcosystemPyPI  Ecosystem = "pypi"
	EcosystemPub   Ecosystem = "pub"
)

// Files lists the manifest file names recognized at a repository root, in lookup order.
var Files = []string{
	"package.json",
	"go.mod",
	"Cargo.toml",
	"pyproject.toml",
	"requirements.txt",
	"pubspec.yaml",
}

// Dependency is one declared dependency.
type Dependency struct {
	Name    string
	Version string // As declared, may be a range or empty
	Dev     bool   // Dev-only or indirect
}

// Manifest is the parsed content of one manifest file.
type Manifest struct {
	File         string
	Ecosystem    Ecosystem
	Name         string
	Description  string
	Dependencies []Dependency // Sorted by name
}

// IsManifest reports whether the base name of path is a recognized manifest.
func IsManifest(path string) bool {
	return slices.Contains(Files, filepath.Base(path))
}

// Parse parses the manifest data according to the base name of file.
func Parse(file string, data []byte) (*Manifest, error) {
	var (
		m   *Manifest
		err error
	)
	switch filepath.Base(file) {
	case "package.json":
		m, err = parsePackageJSON(data)
	case "go.mod":
		m, err = parseGoMod(file, data)
	case "Cargo.toml":
		m, err = parseCargo(data)
	case "pyproject.toml":
		m, err = parsePyProject(data)
	case "requirements.txt":
		m = parseRequirements(data)
	case "pubspec.yaml":
		m, err = parsePubspec(data)
	default:
		return nil, fmt.Errorf("unsupported manifest %q", file)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	m.File = file
	sort.SliceStable(m.Dependencies, func(i, j int) bool {
		return m.Dependencies[i].Name < m.Dependencies[j].Name
	})
	return m, nil
}

// NormalizeVersion turns a declared version or range like "^4.17.1" or
// ">=2.0, <3" into a canonical semver string ("v4.17.1", "v2.0.0"). It returns
// an empty string when no version can be extracted.
func NormalizeVersion(declared string) string {
	v := strings.TrimSpace(declared)
	v = strings.TrimLeft(v, "^~>=<!= ")
	if i := strings.IndexAny(v, " ,;|"); i >= 0 {
		v = v[:i]
	}
	v = strings.TrimSuffix(strings.TrimSuffix(v, ".*"), ".x")
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}

func parsePackageJSON(data []byte) (*Manifest, error) {
	var pkg struct {
		Name            string            `json:"name"`
		Description     string            `json:"description"`
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	m := &Manifest{Ecosystem: EcosystemNPM, Name: pkg.Name, Description: pkg.Description}
	for name, version := range pkg.Dependencies {
		m.Dependencies = append(m.Dependencies, Dependency{Name: name, Version: version})
	}
	for name, version := range pkg.DevDependencies {
		m.Dependencies = append(m.Dependencies, Dependency{Name: name, Version: version, Dev: true})
	}
	return m, nil
}

func parseGoMod(file string, data []byte) (*Manifest, error) {
	f, err := modfile.ParseLax(file, data, nil)
	if err != nil {
		return nil, err
	}
	m := &Manifest{Ecosystem: EcosystemGo}
	if f.Module != nil {
		m.Name = f.Module.Mod.Path
	}
	for _, r := range f.Require {
		m.Dependencies = append(m.Dependencies, Dependency{
			Name:    r.Mod.Path,
			Version: r.Mod.Version,
			Dev:     r.Indirect,
		})
	}
	return m, nil
}

// tomlDependencies reads a Cargo or Poetry style dependency table where each
// value is either a version string or a table with a "version" key.
func tomlDependencies(table map[string]any, dev bool, skip ...string) []Dependency {
	var deps []Dependency
	for name, raw := range table {
		if slices.Contains(skip, name) {
			continue
		}
		d := Dependency{Name: name, Dev: dev}
		switch v := raw.(type) {
		case string:
			d.Version = v
		case map[string]any:
			if s, ok := v["version"].(string); ok {
				d.Version = s
			}
		}
		deps = append(deps, d)
	}
	return deps
}

func parseCargo(data []byte) (*Manifest, error) {
	var cargo map[string]any
	if err := toml.Unmarshal(data, &cargo); err != nil {
		return nil, err
	}
	m := &Manifest{Ecosystem: EcosystemCargo}
	if pkg, ok := cargo["package"].(map[string]any); ok {
		m.Name, _ = pkg["name"].(string)
		m.Description, _ = pkg["description"].(string)
	}
	if deps, ok := cargo["dependencies"].(map[string]any); ok {
		m.Dependencies = append(m.Dependencies, tomlDependencies(deps, false)...)
	}
	if deps, ok := cargo["dev-dependencies"].(map[string]any); ok {
		m.Dependencies = append(m.Dependencies, tomlDependencies(deps, true)...)
	}
	return m, nil
}

func parsePyProject(data []byte) (*Manifest, error) {
	var pyproject map[string]any
	if err := toml.Unmarshal(data, &pyproject); err != nil {
		return nil, err
	}
	m := &Manifest{Ecosystem: EcosystemPyPI}
	if project, ok := pyproject["project"].(map[string]any); ok {
		m.Name, _ = project["name"].(string)
		m.Description, _ = project["description"].(string)
		if reqs, ok := project["dependencies"].([]any); ok {
			for _, r := range reqs {
				if s, ok := r.(string); ok {
					if d, ok := parseRequirement(s); ok {
						m.Dependencies = append(m.Dependencies, d)
					}
				}
			}
		}
	}
	// Poetry
	if tool, ok := pyproject["tool"].(map[string]any); ok {
		if poetry, ok := tool["poetry"].(map[string]any); ok {
			if m.Name == "" {
				m.Name, _ = poetry["name"].(string)
			}
			if m.Description == "" {
				m.Description, _ = poetry["description"].(string)
			}
			if deps, ok := poetry["dependencies"].(map[string]any); ok {
				m.Dependencies = append(m.Dependencies, tomlDependencies(deps, false, "python")...)
			}
		}
	}
	return m, nil
}

func parseRequirements(data []byte) *Manifest {
	m := &Manifest{Ecosystem: EcosystemPyPI}
	for line := range strings.SplitSeq(string(data), "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		if d, ok := parseRequirement(line); ok {
			m.Dependencies = append(m.Dependencies, d)
		}
	}
	return m
}

// parseRequirement parses a PEP 508 style line such as "flask[async]>=2.0; python_version>'3.8'".
func parseRequirement(line string) (Dependency, bool) {
	if i := strings.Index(line, ";"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	end := strings.IndexAny(line, "=<>!~[ (")
	if end < 0 {
		end = len(line)
	}
	name := strings.ToLower(strings.TrimSpace(line[:end]))
	if name == "" {
		return Dependency{}, false
	}
	rest := line[end:]
	if strings.HasPrefix(rest, "[") {
		if j := strings.Index(rest, "]"); j >= 0 {
			rest = rest[j+1:]
		}
	}
	rest = strings.Trim(strings.TrimSpace(rest), "()")
	return Dependency{Name: name, Version: strings.TrimSpace(rest)}, true
}

func parsePubspec(data []byte) (*Manifest, error) {
	var spec struct {
		Name            string         `yaml:"name"`
		Description     string         `yaml:"description"`
		Dependencies    map[string]any `yaml:"dependencies"`
		DevDependencies map[string]any `yaml:"dev_dependencies"`
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	m := &Manifest{Ecosystem: EcosystemPub, Name: spec.Name, Description: spec.Description}
	add := func(table map[string]any, dev bool) {
		for name, raw := range table {
			d := Dependency{Name: name, Dev: dev}
			switch v := raw.(type) {
			case string:
				d.Version = v
			case map[string]any:
				if s, ok := v["version"].(string); ok {
					d.Version = s
				}
			}
			m.Dependencies = append(m.Dependencies, d)
		}
	}
	add(spec.Dependencies, false)
	add(spec.DevDependencies, true)
	return m, nil
}
