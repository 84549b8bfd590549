// Package discovery walks a local repository and builds the RepositoryAnalysis
// that the analyzer and the index consume.
package discovery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/huangsam/reposcope/core/manifest"
	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
)

// Key file selection limits.
const (
	DefaultMaxKeyFiles = 50
	MaxKeyFileSize     = 1 << 20 // Larger files are never key files
	smallFileSize      = 64 << 10
)

// Options controls a discovery walk.
type Options struct {
	Excludes    []string // Doublestar patterns relative to the root, nil means contract.DefaultExcludes
	MaxKeyFiles int      // <= 0 means DefaultMaxKeyFiles
	Now         func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Excludes == nil {
		o.Excludes = contract.DefaultExcludes
	}
	if o.MaxKeyFiles <= 0 {
		o.MaxKeyFiles = DefaultMaxKeyFiles
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// extensionLanguages maps file extensions to language names.
var extensionLanguages = map[string]string{
	".js":     "JavaScript",
	".jsx":    "JavaScript",
	".mjs":    "JavaScript",
	".cjs":    "JavaScript",
	".ts":     "TypeScript",
	".tsx":    "TypeScript",
	".py":     "Python",
	".go":     "Go",
	".java":   "Java",
	".kt":     "Kotlin",
	".scala":  "Scala",
	".cs":     "C#",
	".rs":     "Rust",
	".rb":     "Ruby",
	".php":    "PHP",
	".swift":  "Swift",
	".m":      "Objective-C",
	".dart":   "Dart",
	".c":      "C",
	".h":      "C",
	".cpp":    "C++",
	".cc":     "C++",
	".hpp":    "C++",
	".vue":    "Vue",
	".svelte": "Svelte",
	".sh":     "Shell",
}

// entryPoints are base names without extension that usually start a program.
var entryPoints = map[string]bool{
	"main":     true,
	"index":    true,
	"app":      true,
	"server":   true,
	"cli":      true,
	"manage":   true,
	"__init__": true,
	"lib":      true,
	"mod":      true,
}

// LanguageOf returns the language of a file by extension, or "".
func LanguageOf(name string) string {
	return extensionLanguages[strings.ToLower(filepath.Ext(name))]
}

type candidate struct {
	path     string
	language string
	size     int64
	depth    int
	manifest bool
}

// importance scores a key file candidate. Entry points and manifests rank
// highest, deeper and larger files lower.
func (c candidate) importance() float64 {
	score := 1.0
	base := strings.TrimSuffix(path.Base(c.path), path.Ext(c.path))
	if entryPoints[strings.ToLower(base)] {
		score += 3
	}
	if c.manifest {
		score += 2
	}
	if c.language != "" {
		score += 2
	}
	if c.size > 0 && c.size <= smallFileSize {
		score++
	}
	score -= 0.5 * float64(c.depth)
	return math.Round(math.Max(score, 0)*100) / 100
}

// walkState accumulates counts during a walk.
type walkState struct {
	analysis   *schema.RepositoryAnalysis
	dirs       map[string]*schema.DirectoryInfo
	dirOrder   []string
	langCounts map[string]int
	candidates []candidate
	manifests  []string
}

// Discover walks root and builds its RepositoryAnalysis. Unreadable
// subdirectories are skipped with a warning. Manifests that fail to parse are
// logged and ignored.
func Discover(ctx context.Context, root string, opts Options) (*schema.RepositoryAnalysis, error) {
	opts = opts.withDefaults()
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot access repository %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository %q is not a directory", root)
	}

	st := &walkState{
		analysis: &schema.RepositoryAnalysis{
			Path:       abs,
			Name:       filepath.Base(abs),
			Languages:  []string{},
			Frameworks: []string{},
		},
		dirs:       make(map[string]*schema.DirectoryInfo),
		langCounts: make(map[string]int),
	}
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if p == abs {
				return walkErr
			}
			contract.LogWarn("Skipping unreadable path "+p, walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(abs, p)
		if err != nil {
			return nil //nolint:nilerr // paths outside the root are skipped
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if contract.ShouldIgnore(rel, opts.Excludes) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			st.addDir(rel)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			contract.LogWarn("Skipping file "+rel, err)
			return nil
		}
		st.addFile(rel, fi.Size())
		return nil
	})
	if err != nil {
		return nil, err
	}

	st.finish(ctx, abs, opts)
	st.analysis.AnalyzedAt = opts.Now()
	return st.analysis, nil
}

func (st *walkState) addDir(rel string) {
	st.analysis.DirectoryCount++
	st.dirs[rel] = &schema.DirectoryInfo{Path: rel}
	st.dirOrder = append(st.dirOrder, rel)
	if parent := path.Dir(rel); parent != "." {
		if info, ok := st.dirs[parent]; ok {
			info.SubdirectoryCount++
		}
	}
}

func (st *walkState) addFile(rel string, size int64) {
	st.analysis.FileCount++
	st.analysis.TotalSize += size
	if info, ok := st.dirs[path.Dir(rel)]; ok {
		info.FileCount++
	}

	lang := LanguageOf(rel)
	if lang != "" {
		st.langCounts[lang]++
	}
	isManifest := !strings.Contains(rel, "/") && manifest.IsManifest(rel)
	if isManifest {
		st.manifests = append(st.manifests, rel)
	}
	if (lang != "" || isManifest) && size <= MaxKeyFileSize {
		st.candidates = append(st.candidates, candidate{
			path:     rel,
			language: lang,
			size:     size,
			depth:    strings.Count(rel, "/"),
			manifest: isManifest,
		})
	}
}

func (st *walkState) finish(ctx context.Context, root string, opts Options) {
	a := st.analysis

	langs := make([]string, 0, len(st.langCounts))
	for l := range st.langCounts {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool {
		if st.langCounts[langs[i]] != st.langCounts[langs[j]] {
			return st.langCounts[langs[i]] > st.langCounts[langs[j]]
		}
		return langs[i] < langs[j]
	})
	a.Languages = langs

	for _, rel := range st.dirOrder {
		a.Structure.Directories = append(a.Structure.Directories, *st.dirs[rel])
	}

	st.readManifests(root)
	a.Structure.KeyFiles = st.keyFiles(ctx, root, opts.MaxKeyFiles)
}

// readManifests fills frameworks, dependencies and metadata from the root
// manifests in manifest.Files order.
func (st *walkState) readManifests(root string) {
	a := st.analysis
	seen := make(map[string]bool)
	for _, name := range manifest.Files {
		if !slices.Contains(st.manifests, name) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			contract.LogWarn("Cannot read manifest "+name, err)
			continue
		}
		m, err := manifest.Parse(name, data)
		if err != nil {
			contract.LogWarn("Cannot parse manifest "+name, err)
			continue
		}
		if a.Description == "" {
			a.Description = m.Description
		}
		for _, fw := range m.Frameworks() {
			if !seen[fw] {
				seen[fw] = true
				a.Frameworks = append(a.Frameworks, fw)
			}
		}
		for _, dep := range m.Dependencies {
			if a.Dependencies == nil {
				a.Dependencies = make(map[string]string)
			}
			if _, ok := a.Dependencies[dep.Name]; !ok {
				a.Dependencies[dep.Name] = dep.Version
			}
		}
	}
}

// keyFiles ranks candidates and counts lines of the selected ones.
func (st *walkState) keyFiles(ctx context.Context, root string, limit int) []schema.KeyFile {
	cands := st.candidates
	sort.SliceStable(cands, func(i, j int) bool {
		si, sj := cands[i].importance(), cands[j].importance()
		if si != sj {
			return si > sj
		}
		return cands[i].path < cands[j].path
	})
	if len(cands) > limit {
		cands = cands[:limit]
	}

	out := make([]schema.KeyFile, 0, len(cands))
	for _, c := range cands {
		if ctx.Err() != nil {
			break
		}
		lines, err := countLines(filepath.Join(root, filepath.FromSlash(c.path)))
		if err != nil {
			contract.LogWarn("Cannot count lines of "+c.path, err)
		}
		out = append(out, schema.KeyFile{
			Path:       c.path,
			Language:   c.language,
			Size:       c.size,
			LineCount:  lines,
			Importance: c.importance(),
		})
	}
	return out
}

func countLines(p string) (int, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, nil
	}
	n := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		n++
	}
	return n, nil
}

// IsNotExist reports whether a Discover error means the root is missing.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
