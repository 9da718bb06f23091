/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package relnotes

import (
	"regexp"
	"sort"
	"strings"
)

// titleVersionRE finds semantic-version-looking substrings inside titles.
// Looser than the config version check on purpose: bare 1.2.3 tokens in
// titles are still styled.
var titleVersionRE = regexp.MustCompile(`v?[0-9]+\.[0-9]+\.[0-9]+(?:-preview\.[0-9]+)?`)

// sanitizeTitle runs the configured transformation pipeline over a title.
// The steps run in a fixed order so output is reproducible: emoji stripping,
// whole-title word replacements, first-word replacement, per-word styling,
// version styling. Each step consumes the previous step's output.
func (c Config) sanitizeTitle(title string) string {
	for _, emoji := range c.Emojis {
		title = strings.ReplaceAll(title, emoji, "")
	}
	title = strings.TrimSpace(title)

	for _, word := range sortedKeys(c.WordReplacements) {
		title = strings.ReplaceAll(title, word, c.WordReplacements[word])
	}

	title = c.replaceFirstWord(title)

	for _, word := range sortedKeys(c.StyledWords) {
		title = styleWord(title, word, c.StyledWords[word])
	}

	if c.BoldVersions || c.ItalicVersions {
		title = titleVersionRE.ReplaceAllStringFunc(title, func(v string) string {
			if c.BoldVersions {
				v = "**" + v + "**"
			}
			if c.ItalicVersions {
				v = "*" + v + "*"
			}
			return v
		})
	}

	return title
}

// replaceFirstWord applies the first-word substitution map to the leading
// token only, matching case-insensitively.
func (c Config) replaceFirstWord(title string) string {
	if len(c.FirstWordReplacements) == 0 {
		return title
	}

	first, rest, found := strings.Cut(title, " ")
	for _, word := range sortedKeys(c.FirstWordReplacements) {
		if !strings.EqualFold(first, word) {
			continue
		}
		if !found {
			return c.FirstWordReplacements[word]
		}
		return c.FirstWordReplacements[word] + " " + rest
	}
	return title
}

// styleWord wraps whole-word occurrences of word in bold or italic markers.
func styleWord(title, word, style string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	return re.ReplaceAllStringFunc(title, func(m string) string {
		if style == "bold" {
			return "**" + m + "**"
		}
		return "*" + m + "*"
	})
}

// sortedKeys returns map keys in a deterministic order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
