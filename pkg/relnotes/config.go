/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package relnotes

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Release types recognized in configuration.
const (
	ReleaseTypeProduction = "production"
	ReleaseTypePreview    = "preview"
)

// versionRE matches a release version: v<major>.<minor>.<patch> with an
// optional -preview.<n> suffix.
var versionRE = regexp.MustCompile(`^v[0-9]+\.[0-9]+\.[0-9]+(-preview\.[0-9]+)?$`)

// Category defines one release notes section. Exactly one of Label or
// IssueType selects the matching items.
type Category struct {
	Name      string `yaml:"name"`
	Label     string `yaml:"label,omitempty"`
	IssueType string `yaml:"issueType,omitempty"`
}

// ExtraInfo is an optional free-text block rendered right after the document
// header.
type ExtraInfo struct {
	Title string `yaml:"title"`
	Text  string `yaml:"text"`
}

// Config drives the release notes generator. Category order in the file is
// the order sections appear in the document.
type Config struct {
	// RepoName, Version, and ReleaseType fill the ${REPONAME}, ${VERSION},
	// and ${RELEASETYPE}/${ENVIRONMENT} placeholders.
	RepoName    string `yaml:"repoName"`
	Version     string `yaml:"version"`
	ReleaseType string `yaml:"releaseType"`

	// HeaderText is the document title. Required.
	HeaderText string `yaml:"headerText"`

	ExtraInfo *ExtraInfo `yaml:"extraInfo,omitempty"`

	// IgnoreLabels excludes any item carrying one of these labels.
	IgnoreLabels []string `yaml:"ignoreLabels,omitempty"`

	IssueTypeCategories []Category `yaml:"issueTypeCategories,omitempty"`
	IssueCategories     []Category `yaml:"issueCategories,omitempty"`
	PRCategories        []Category `yaml:"prCategories,omitempty"`

	// OtherCategoryName names the catch-all section for issues matching none
	// of the issue category labels. Empty disables the catch-all.
	OtherCategoryName string `yaml:"otherCategoryName,omitempty"`

	// Title sanitization rules, applied in pipeline order.
	Emojis                []string          `yaml:"emojis,omitempty"`
	WordReplacements      map[string]string `yaml:"wordReplacements,omitempty"`
	FirstWordReplacements map[string]string `yaml:"firstWordReplacements,omitempty"`
	StyledWords           map[string]string `yaml:"styledWords,omitempty"`
	BoldVersions          bool              `yaml:"boldVersions"`
	ItalicVersions        bool              `yaml:"italicVersions"`
}

// LoadConfig reads and validates a Config from a YAML file.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects malformed or incomplete configuration. Errors name the
// specific offending field.
func (c Config) Validate() error {
	if strings.TrimSpace(c.HeaderText) == "" {
		return errors.New("headerText is required")
	}
	if !versionRE.MatchString(c.Version) {
		return fmt.Errorf("version %q is not a valid release version (want v#.#.# or v#.#.#-preview.#)", c.Version)
	}

	isPreview := strings.Contains(c.Version, "-preview.")
	switch c.ReleaseType {
	case ReleaseTypeProduction:
		if isPreview {
			return fmt.Errorf("release type is %q but version %q carries a preview suffix", c.ReleaseType, c.Version)
		}
	case ReleaseTypePreview:
		if !isPreview {
			return fmt.Errorf("release type is %q but version %q has no preview suffix", c.ReleaseType, c.Version)
		}
	default:
		return fmt.Errorf("releaseType %q must be %q or %q", c.ReleaseType, ReleaseTypeProduction, ReleaseTypePreview)
	}

	for _, cat := range c.IssueTypeCategories {
		if cat.Name == "" || cat.IssueType == "" || cat.Label != "" {
			return fmt.Errorf("issue type category %q must set name and issueType only", cat.Name)
		}
	}
	for _, cat := range c.IssueCategories {
		if cat.Name == "" || cat.Label == "" || cat.IssueType != "" {
			return fmt.Errorf("issue category %q must set name and label only", cat.Name)
		}
	}
	for _, cat := range c.PRCategories {
		if cat.Name == "" || cat.Label == "" || cat.IssueType != "" {
			return fmt.Errorf("PR category %q must set name and label only", cat.Name)
		}
	}

	for word, style := range c.StyledWords {
		if style != "bold" && style != "italic" {
			return fmt.Errorf("styled word %q has unknown style %q (want bold or italic)", word, style)
		}
	}

	return nil
}

// expand substitutes the recognized placeholders with literal values. The
// substitution is case-sensitive and has no escaping mechanism.
func (c Config) expand(s string) string {
	r := strings.NewReplacer(
		"${VERSION}", c.Version,
		"${RELEASETYPE}", c.ReleaseType,
		"${ENVIRONMENT}", c.ReleaseType,
		"${REPONAME}", c.RepoName,
	)
	return r.Replace(s)
}

// labelsToValidate returns every distinct label the configuration references.
func (c Config) labelsToValidate() []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(label string) {
		if label == "" {
			return
		}
		if _, ok := seen[label]; ok {
			return
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}

	for _, l := range c.IgnoreLabels {
		add(l)
	}
	for _, cat := range c.IssueCategories {
		add(cat.Label)
	}
	for _, cat := range c.PRCategories {
		add(cat.Label)
	}
	return out
}
