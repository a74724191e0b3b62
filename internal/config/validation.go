package config

import (
	"fmt"
	"math"

	"github.com/khanglvm/delta-ego/internal/search"
)

// Validate checks every configured value and reports all problems at once
// as a *ValidationError.
func Validate(cfg *Config) error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if s := cfg.Search; s != nil {
		if s.K < 0 {
			add("search.k: must be positive, got %d", s.K)
		}
		if math.IsNaN(s.Radius) || s.Radius < 0 {
			add("search.radius: must be non-negative, got %v", s.Radius)
		}
		if math.IsNaN(s.Sigma) || s.Sigma < 0 {
			add("search.sigma: must be positive, got %v", s.Sigma)
		}
		if s.Mode != "" {
			if _, err := search.ParseMode(s.Mode); err != nil {
				add("search.mode: %v", err)
			}
		}
	}

	if _, err := cfg.Params(); err != nil {
		add("ego: %v", err)
	}

	if s := cfg.Session; s != nil {
		if s.HistoryLimit < 0 {
			add("session.historyLimit: must not be negative, got %d", s.HistoryLimit)
		}
		if s.AnalysisLimit < 0 {
			add("session.analysisLimit: must not be negative, got %d", s.AnalysisLimit)
		}
	}

	if s := cfg.Storage; s != nil && s.RetentionDays < 0 {
		add("storage.retentionDays: must not be negative, got %d", s.RetentionDays)
	}

	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}
