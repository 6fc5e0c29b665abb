// Package filter implements the inclusion rule applied to postings that
// have not been announced before.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"usajobs-watch/internal/config"
	"usajobs-watch/internal/model"
)

// Ensure KeywordGradeFilter implements model.PostingFilter.
var _ model.PostingFilter = (*KeywordGradeFilter)(nil)

// KeywordGradeFilter accepts a posting when its title contains any of the
// configured phrases, or any of its grade codes matches the grade pattern.
// With no phrases and no pattern configured, every posting is accepted.
type KeywordGradeFilter struct {
	phrases []string // lowercased
	grade   *regexp.Regexp
}

// New compiles the filter from config. An invalid grade pattern is a
// configuration error and fails the run up front.
func New(cfg config.FilterConfig) (*KeywordGradeFilter, error) {
	f := &KeywordGradeFilter{}

	for _, p := range cfg.TitlePhrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			f.phrases = append(f.phrases, p)
		}
	}

	if cfg.GradePattern != "" {
		re, err := regexp.Compile(cfg.GradePattern)
		if err != nil {
			return nil, fmt.Errorf("compile filter.grade_pattern %q: %w", cfg.GradePattern, err)
		}
		f.grade = re
	}

	return f, nil
}

// Match reports whether the posting passes the inclusion rule.
func (f *KeywordGradeFilter) Match(p model.Posting) bool {
	if len(f.phrases) == 0 && f.grade == nil {
		return true
	}

	title := strings.ToLower(p.Title)
	for _, phrase := range f.phrases {
		if strings.Contains(title, phrase) {
			return true
		}
	}

	if f.grade != nil {
		for _, code := range p.Grades {
			if f.grade.MatchString(code) {
				return true
			}
		}
	}

	return false
}
