package analyzer

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/huangsam/reposcope/schema"
)

// Vulnerability types.
const (
	VulnHardcodedPassword   = "Hardcoded Password"
	VulnHardcodedAPIKey     = "Hardcoded API Key"
	VulnHardcodedSecret     = "Hardcoded Secret"
	VulnHardcodedToken      = "Hardcoded Token"
	VulnHardcodedPrivateKey = "Hardcoded Private Key"
	VulnSQLInjection        = "SQL Injection"
	VulnXSSInnerHTML        = "XSS (innerHTML)"
	VulnXSSDocumentWrite    = "XSS (document.write)"
	VulnXSSEval             = "XSS (eval)"
	VulnInsecureRandom      = "Insecure Random"
	VulnInsecureHTTP        = "Insecure HTTP"
	VulnCommandInjection    = "Command Injection"
	VulnDependency          = "Vulnerable Dependency"
)

// securityRule is one line-level detection rule.
type securityRule struct {
	vulnType       string
	pattern        *regexp.Regexp
	description    string
	recommendation string
	skip           func(line string) bool
}

var localHTTP = regexp.MustCompile(`http://(localhost|127\.0\.0\.1|0\.0\.0\.0|[\w.]*w3\.org)`)

var securityRules = []securityRule{
	{
		vulnType:       VulnHardcodedPassword,
		pattern:        regexp.MustCompile(`(?i)\b\w*(password|passwd|pwd)\w*\s*[:=]\s*["'][^"']+["']`),
		description:    "Password assigned from a string literal",
		recommendation: "Load passwords from environment variables or a secrets manager",
	},
	{
		vulnType:       VulnHardcodedAPIKey,
		pattern:        regexp.MustCompile(`(?i)\b\w*api[_-]?key\w*\s*[:=]\s*["'][^"']+["']`),
		description:    "API key assigned from a string literal",
		recommendation: "Load API keys from environment variables or a secrets manager",
	},
	{
		vulnType:       VulnHardcodedSecret,
		pattern:        regexp.MustCompile(`(?i)\b\w*secret\w*\s*[:=]\s*["'][^"']+["']`),
		description:    "Secret assigned from a string literal",
		recommendation: "Move secrets into a secrets manager",
	},
	{
		vulnType:       VulnHardcodedToken,
		pattern:        regexp.MustCompile(`(?i)\b\w*token\w*\s*[:=]\s*["'][A-Za-z0-9_\-.]{8,}["']`),
		description:    "Token assigned from a string literal",
		recommendation: "Load tokens from environment variables or a secrets manager",
	},
	{
		vulnType:       VulnHardcodedPrivateKey,
		pattern:        regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`),
		description:    "Private key embedded in source",
		recommendation: "Store private keys outside the repository",
	},
	{
		vulnType:       VulnSQLInjection,
		pattern:        regexp.MustCompile(`(?i)((query|execute|raw)\s*\(\s*["'` + "`" + `][^"'` + "`" + `]*["'` + "`" + `]\s*\+|\bselect\b.+\bfrom\b.*["'` + "`" + `]\s*\+|\bselect\b.+\bfrom\b.*\$\{)`),
		description:    "SQL query built by string concatenation",
		recommendation: "Use parameterized queries or prepared statements",
	},
	{
		vulnType:       VulnXSSInnerHTML,
		pattern:        regexp.MustCompile(`\.(innerHTML|outerHTML)\s*=`),
		description:    "Assignment to an HTML sink",
		recommendation: "Use textContent or sanitize HTML before inserting it",
	},
	{
		vulnType:       VulnXSSDocumentWrite,
		pattern:        regexp.MustCompile(`document\.write(ln)?\s*\(`),
		description:    "document.write call",
		recommendation: "Build DOM nodes instead of writing raw HTML",
	},
	{
		vulnType:       VulnXSSEval,
		pattern:        regexp.MustCompile(`\beval\s*\(`),
		description:    "Dynamic code evaluation",
		recommendation: "Avoid eval and parse data explicitly",
	},
	{
		vulnType:       VulnInsecureRandom,
		pattern:        regexp.MustCompile(`Math\.random\s*\(|\brandom\.(random|randint|choice)\s*\(|\brand\.(Int|Intn|Float64|Seed)\w*\s*\(`),
		description:    "Non-cryptographic random number generator",
		recommendation: "Use a cryptographically secure random source for security-sensitive values",
	},
	{
		vulnType:       VulnInsecureHTTP,
		pattern:        regexp.MustCompile(`["'` + "`" + `]http://[^"'` + "`" + `\s]+`),
		description:    "Plain-text HTTP URL",
		recommendation: "Use HTTPS URLs",
		skip:           localHTTP.MatchString,
	},
	{
		vulnType:       VulnCommandInjection,
		pattern:        regexp.MustCompile(`(?i)\b(exec|execSync|spawn|system|popen|shell_exec)\s*\([^)]*["'` + "`" + `]\s*\+`),
		description:    "Shell command built by string concatenation",
		recommendation: "Pass arguments as a list and validate all user input",
	},
}

// SeverityForType maps a vulnerability type to its severity.
func SeverityForType(vulnType string) schema.Severity {
	switch {
	case strings.Contains(vulnType, "Injection"):
		return schema.SeverityCritical
	case strings.HasPrefix(vulnType, "XSS"), strings.HasPrefix(vulnType, "Hardcoded"):
		return schema.SeverityHigh
	case strings.HasPrefix(vulnType, "Insecure"):
		return schema.SeverityMedium
	default:
		return schema.SeverityLow
	}
}

// scanSecurity applies every rule to each line, producing at most one record
// per rule per line.
func scanSecurity(sf *sourceFile) []schema.SecurityVulnerability {
	var out []schema.SecurityVulnerability
	for i, line := range sf.lines {
		for _, rule := range securityRules {
			if !rule.pattern.MatchString(line) {
				continue
			}
			if rule.skip != nil && rule.skip(line) {
				continue
			}
			out = append(out, schema.SecurityVulnerability{
				ID:             schema.VulnerabilityID(sf.path, i+1, rule.vulnType),
				Severity:       SeverityForType(rule.vulnType),
				Type:           rule.vulnType,
				Description:    fmt.Sprintf("%s at line %d", rule.description, i+1),
				File:           sf.path,
				Line:           i + 1,
				Recommendation: rule.recommendation,
			})
		}
	}
	return out
}

// securityScore is 100 minus the capped weighted severity sum.
func securityScore(vulns []schema.SecurityVulnerability) int {
	penalty := 0
	for _, v := range vulns {
		penalty += v.Severity.SecurityWeight() * SecurityWeightMultiplier
	}
	return SecurityScoreMax - int(math.Min(float64(penalty), SecurityScoreMax))
}

var (
	expressFamily = []string{"express", "fastify", "koa", "hapi", "nest"}
	reactFamily   = []string{"react", "next", "gatsby", "remix"}
)

func hasFramework(frameworks []string, family []string) bool {
	for _, fw := range frameworks {
		lower := strings.ToLower(fw)
		for _, name := range family {
			if strings.Contains(lower, name) {
				return true
			}
		}
	}
	return false
}

// securityRecommendations returns framework advice followed by advice for each
// vulnerability type found, in a fixed order without duplicates.
func securityRecommendations(frameworks []string, vulns []schema.SecurityVulnerability) []string {
	var recs []string
	add := func(r string) {
		for _, existing := range recs {
			if existing == r {
				return
			}
		}
		recs = append(recs, r)
	}

	if hasFramework(frameworks, expressFamily) {
		add("Use security headers middleware such as helmet")
		add("Add rate limiting to public endpoints")
		add("Serve all traffic over HTTPS")
	}
	if hasFramework(frameworks, reactFamily) {
		add("Sanitize user input before rendering HTML")
		add("Configure a Content Security Policy")
	}

	found := make(map[string]bool)
	for _, v := range vulns {
		found[v.Type] = true
	}
	if found[VulnHardcodedPassword] || found[VulnHardcodedAPIKey] || found[VulnHardcodedSecret] ||
		found[VulnHardcodedToken] || found[VulnHardcodedPrivateKey] {
		add("Move hardcoded secrets into environment variables or a secrets manager")
	}
	if found[VulnSQLInjection] {
		add("Use parameterized queries for all database access")
	}
	if found[VulnXSSInnerHTML] {
		add("Sanitize HTML before assigning it to innerHTML")
	}
	if found[VulnCommandInjection] {
		add("Avoid building shell commands from user input")
	}
	if found[VulnInsecureRandom] {
		add("Use a cryptographically secure random generator")
	}
	if found[VulnInsecureHTTP] {
		add("Replace http:// URLs with https://")
	}
	if found[VulnDependency] {
		add("Update vulnerable dependencies to patched versions")
	}
	if recs == nil {
		recs = []string{}
	}
	return recs
}
