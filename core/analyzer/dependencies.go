package analyzer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/huangsam/reposcope/core/manifest"
	"github.com/huangsam/reposcope/schema"
	"golang.org/x/mod/semver"
)

// vulnerablePackage is one entry of the known-vulnerable package table.
// An empty fixedIn means every version is affected.
type vulnerablePackage struct {
	severity schema.Severity
	fixedIn  string
	advisory string
}

var vulnerablePackages = map[manifest.Ecosystem]map[string]vulnerablePackage{
	manifest.EcosystemNPM: {
		"lodash":         {schema.SeverityHigh, "v4.17.21", "prototype pollution"},
		"minimist":       {schema.SeverityMedium, "v1.2.6", "prototype pollution"},
		"event-stream":   {schema.SeverityCritical, "v4.0.0", "malicious flatmap-stream dependency"},
		"node-serialize": {schema.SeverityCritical, "", "remote code execution via unserialize"},
		"jquery":         {schema.SeverityMedium, "v3.5.0", "cross-site scripting in htmlPrefilter"},
		"axios":          {schema.SeverityMedium, "v1.6.0", "cross-site request forgery"},
		"moment":         {schema.SeverityMedium, "v2.29.4", "regular expression denial of service"},
		"request":        {schema.SeverityLow, "", "deprecated and unmaintained"},
		"handlebars":     {schema.SeverityHigh, "v4.7.7", "remote code execution in templates"},
	},
	manifest.EcosystemGo: {
		"github.com/dgrijalva/jwt-go": {schema.SeverityHigh, "", "audience verification bypass, unmaintained"},
		"github.com/gin-gonic/gin":    {schema.SeverityMedium, "v1.9.1", "path traversal in static file serving"},
	},
	manifest.EcosystemPyPI: {
		"pyyaml":   {schema.SeverityHigh, "v5.4.0", "arbitrary code execution in full_load"},
		"requests": {schema.SeverityMedium, "v2.31.0", "proxy credential leak"},
		"urllib3":  {schema.SeverityMedium, "v1.26.18", "cookie header leak on redirect"},
		"jinja2":   {schema.SeverityMedium, "v3.1.3", "cross-site scripting in xmlattr"},
		"flask":    {schema.SeverityHigh, "v2.2.5", "session cookie disclosure"},
	},
}

// isVulnerable reports whether the declared version is below the fixed version.
// Unknown or unparsable versions are treated as affected.
func (p vulnerablePackage) isVulnerable(declared string) bool {
	if p.fixedIn == "" {
		return true
	}
	v := manifest.NormalizeVersion(declared)
	if v == "" {
		return true
	}
	return semver.Compare(v, p.fixedIn) < 0
}

// scanDependencies reads every recognized manifest at the repository root and
// matches its dependencies against the vulnerable package table.
func (a *Analyzer) scanDependencies(ctx context.Context, root string) ([]schema.SecurityVulnerability, []schema.SkipRecord) {
	var (
		vulns []schema.SecurityVulnerability
		skips []schema.SkipRecord
	)
	for _, name := range manifest.Files {
		content, err := a.reader.ReadFile(ctx, filepath.Join(root, name))
		if err != nil {
			var fre *schema.FileReadError
			if errors.As(err, &fre) && fre.Kind == schema.FileNotFound {
				continue
			}
			skips = append(skips, schema.SkipRecord{File: name, Phase: PhaseDependencies, Reason: err.Error()})
			continue
		}
		m, err := manifest.Parse(name, []byte(content))
		if err != nil {
			skips = append(skips, schema.SkipRecord{File: name, Phase: PhaseDependencies, Reason: err.Error()})
			continue
		}
		vulns = append(vulns, matchVulnerable(m)...)
	}
	return vulns, skips
}

func matchVulnerable(m *manifest.Manifest) []schema.SecurityVulnerability {
	table := vulnerablePackages[m.Ecosystem]
	var out []schema.SecurityVulnerability
	for _, dep := range m.Dependencies {
		pkg, ok := table[dep.Name]
		if !ok || !pkg.isVulnerable(dep.Version) {
			continue
		}
		rec := "Remove or replace this package"
		if pkg.fixedIn != "" {
			rec = fmt.Sprintf("Update %s to %s or later", dep.Name, pkg.fixedIn)
		}
		out = append(out, schema.SecurityVulnerability{
			ID:             schema.DependencyVulnerabilityID(dep.Name, dep.Version),
			Severity:       pkg.severity,
			Type:           VulnDependency,
			Description:    fmt.Sprintf("%s %s has a known vulnerability: %s", dep.Name, dep.Version, pkg.advisory),
			File:           m.File,
			Recommendation: rec,
		})
	}
	return out
}
