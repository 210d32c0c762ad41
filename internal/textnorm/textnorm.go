// Package textnorm holds small composable cleanup steps for scraped wiki text.
//
// Section titles and chunk text scraped from Fandom pages carry artifacts such as
// empty edit-link brackets, glued words from stripped inline markup, and corpus
// specific misspellings. The steps here are combined into a Pipeline so callers
// choose which cleanups apply.
package textnorm

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Step transforms a string.
type Step func(string) string

// Pipeline applies its steps in order.
type Pipeline []Step

// Apply runs every step over s.
func (p Pipeline) Apply(s string) string {
	for _, step := range p {
		s = step(s)
	}
	return s
}

// Replacement rewrites every match of Pattern with With.
type Replacement struct {
	Pattern string `yaml:"pattern" toml:"pattern"`
	With    string `yaml:"with" toml:"with"`
}

var (
	multiSpaceRe    = regexp.MustCompile(`\s{2,}`)
	camelBoundaryRe = regexp.MustCompile(`([a-z])([A-Z])`)
	parenGlueRe     = regexp.MustCompile(`\)([A-Za-z])`)
	parentheticalRe = regexp.MustCompile(`\(\s*,?.*?\)`)
)

// StripEditBrackets removes the empty "[]" left behind by edit links.
func StripEditBrackets(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "[]", ""))
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// CollapseSpaces squeezes whitespace runs into one space and trims the ends.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}

// FixSpacing separates words glued together when inline tags were stripped.
func FixSpacing(s string) string {
	s = camelBoundaryRe.ReplaceAllString(s, "$1 $2")
	s = parenGlueRe.ReplaceAllString(s, ") $1")
	return CollapseSpaces(s)
}

// DropParentheticals removes parenthesized asides such as pronunciations.
func DropParentheticals(s string) string {
	return parentheticalRe.ReplaceAllString(s, "")
}

// Replace compiles rules into a single step.
func Replace(rules []Replacement) (Step, error) {
	type compiled struct {
		re   *regexp.Regexp
		with string
	}
	list := make([]compiled, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile replacement %q: %w", r.Pattern, err)
		}
		list = append(list, compiled{re: re, with: r.With})
	}
	return func(s string) string {
		for _, c := range list {
			s = c.re.ReplaceAllString(s, c.with)
		}
		return s
	}, nil
}

// SectionPipeline cleans a section title.
func SectionPipeline() Pipeline {
	return Pipeline{StripEditBrackets, CollapseSpaces, Capitalize}
}

// ContextPipeline cleans chunk text used as dataset context.
func ContextPipeline(rules []Replacement) (Pipeline, error) {
	replace, err := Replace(rules)
	if err != nil {
		return nil, err
	}
	return Pipeline{DropParentheticals, replace, CollapseSpaces}, nil
}
