// Package redaction hides credentials in rendered profile properties and
// hook output.
package redaction

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"

	"github.com/reglet-dev/dbmatrix/internal/application/dto"
	"github.com/reglet-dev/dbmatrix/internal/application/ports"
)

// Redacted replaces a hidden value.
const Redacted = "[REDACTED]"

// DefaultPaths are property keys whose values are always hidden.
// A path matches a key exactly or as its last dotted segments.
var DefaultPaths = []string{"password", "passwd", "secret"}

// Redactor handles sanitization of sensitive data.
// All fields are read-only after construction, making it safe for concurrent use.
type Redactor struct {
	tracked  ports.SensitiveValueProvider
	salt     string
	patterns []*regexp.Regexp
	paths    []string
	hashMode bool

	// Gitleaks detector for secret detection.
	// If nil, falls back to regex patterns only
	gitleaksDetector *detect.Detector
}

// Config holds the configuration for the Redactor.
type Config struct {
	// Tracked supplies exact values to hide, such as credentials read from the environment
	Tracked ports.SensitiveValueProvider
	// Custom patterns to redact (e.g. "INT-[A-Z0-9]{16}")
	Patterns []string
	// Property keys to always redact, in addition to DefaultPaths (e.g. "connection.token")
	Paths []string
	// If true, replace with hash instead of [REDACTED]
	HashMode bool
	// Salt for hashing. If empty, hash is deterministic but unsalted.
	Salt string
	// If true, disable gitleaks detector and use only custom patterns
	DisableGitleaks bool
}

// New creates a new Redactor with the given configuration.
func New(cfg Config) (*Redactor, error) {
	r := &Redactor{
		tracked:  cfg.Tracked,
		paths:    append(append([]string(nil), DefaultPaths...), cfg.Paths...),
		hashMode: cfg.HashMode,
		salt:     cfg.Salt,
		patterns: make([]*regexp.Regexp, 0, len(cfg.Patterns)+len(defaultPatterns)),
	}

	if !cfg.DisableGitleaks {
		detector, err := newGitleaksDetector()
		if err != nil {
			return nil, err
		}
		r.gitleaksDetector = detector
	}

	for _, p := range defaultPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile default pattern %s: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}

	for _, p := range cfg.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile custom pattern %s: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}

	return r, nil
}

// newGitleaksDetector creates a new gitleaks detector with default configuration.
func newGitleaksDetector() (*detect.Detector, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(config.DefaultConfig)); err != nil {
		return nil, fmt.Errorf("failed to read gitleaks config: %w", err)
	}

	var vc config.ViperConfig
	if err := v.Unmarshal(&vc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gitleaks config: %w", err)
	}

	cfg, err := vc.Translate()
	if err != nil {
		return nil, fmt.Errorf("failed to translate gitleaks config: %w", err)
	}

	return detect.NewDetector(cfg), nil
}

// RedactProperties returns a copy of props with sensitive values hidden.
func (r *Redactor) RedactProperties(props []dto.Property) []dto.Property {
	if props == nil {
		return nil
	}
	out := make([]dto.Property, len(props))
	for i, p := range props {
		out[i] = dto.Property{Key: p.Key, Value: r.RedactValue(p.Key, p.Value)}
	}
	return out
}

// RedactValue hides value entirely when key is a sensitive path, and scrubs
// it otherwise.
func (r *Redactor) RedactValue(key, value string) string {
	if value == "" {
		return ""
	}
	if r.isPathMatch(key) {
		return r.replacement(value)
	}
	return r.ScrubString(value)
}

// ScrubString replaces sensitive patterns in a string. Tracked values go
// first, then gitleaks findings and URL passwords, then regex patterns.
func (r *Redactor) ScrubString(input string) string {
	if input == "" {
		return ""
	}

	result := input

	if r.tracked != nil {
		values := r.tracked.AllValues()
		// longest first so that a value containing another is replaced whole
		sort.Slice(values, func(i, j int) bool { return len(values[i]) > len(values[j]) })
		for _, secret := range values {
			if secret != "" && strings.Contains(result, secret) {
				result = strings.ReplaceAll(result, secret, r.replacement(secret))
			}
		}
	}

	if r.gitleaksDetector != nil {
		findings := r.gitleaksDetector.Detect(detect.Fragment{Raw: result})
		for _, finding := range findings {
			if finding.Secret == "" {
				continue
			}
			result = strings.ReplaceAll(result, finding.Secret, r.replacement(finding.Secret))
		}
	}

	result = urlPassword.ReplaceAllStringFunc(result, func(match string) string {
		i := strings.IndexByte(match, '=')
		if strings.HasPrefix(match[i+1:], "[") {
			return match
		}
		return match[:i+1] + r.replacement(match[i+1:])
	})

	for _, re := range r.patterns {
		result = re.ReplaceAllStringFunc(result, r.replacement)
	}

	return result
}

func (r *Redactor) replacement(secret string) string {
	if r.hashMode {
		return r.hash(secret)
	}
	return Redacted
}

// isPathMatch checks if a property key matches any of the configured paths.
//
// Matching rules:
// - Exact match: path="hibernate.connection.password" matches itself
// - Suffix match: path="password" matches "*.password"
func (r *Redactor) isPathMatch(key string) bool {
	key = strings.ToLower(key)
	for _, p := range r.paths {
		p = strings.ToLower(p)
		if p == key || strings.HasSuffix(key, "."+p) {
			return true
		}
	}
	return false
}

// hash returns a truncated HMAC-SHA256 hash of the secret.
// Format: [hmac:a1b2c3d4e5f6g7h8]
func (r *Redactor) hash(secret string) string {
	mac := hmac.New(sha256.New, []byte(r.salt))
	mac.Write([]byte(secret))
	sum := mac.Sum(nil)

	return fmt.Sprintf("[hmac:%s]", hex.EncodeToString(sum)[:16])
}

// defaultPatterns contains regexes for credentials embedded in values.
var defaultPatterns = []string{
	// AWS Access Key ID
	`\b((?:AKIA|ABIA|ACCA|ASIA)[0-9A-Z]{16})\b`,
	// Generic Private Key Header
	`-----BEGIN [A-Z ]+ PRIVATE KEY-----`,
	// Github Token
	`gh[pousr]_[A-Za-z0-9_]{36,255}`,
}

// urlPassword matches the password parameter of a JDBC URL.
var urlPassword = regexp.MustCompile(`(?i)\b(?:password|pwd)=[^;&\s]+`)
