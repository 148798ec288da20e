package usecase

import (
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/utils/wildcard"
)

// ResolveWorkflows resolves a canonical event against the mapping rule set
// and returns every workflow spec whose rule and repository pattern match.
//
// The result is the union across all matching rules and patterns, not a
// first-match resolution: independently authored rules may each fan the same
// event out to their own workflows. Duplicates are preserved.
func ResolveWorkflows(ev *model.CanonicalEvent, cfg *model.Config) []model.WorkflowSpec {
	var matched []model.WorkflowSpec

	for i := range cfg.EventMappings {
		rule := &cfg.EventMappings[i]
		if rule.EventType != string(ev.EventType) {
			continue
		}
		if !rule.AppliesTo(ev.Action) {
			continue
		}

		for j := range rule.RepositoryPatterns {
			pattern := &rule.RepositoryPatterns[j]
			if !wildcard.Match(ev.Repo.Owner, pattern.Owner) {
				continue
			}
			if !wildcard.Match(ev.Repo.Name, pattern.Repository) {
				continue
			}
			if !pattern.Branches.Matches(ev) {
				continue
			}
			// File constraints apply only to push events, the one type
			// that carries a changed-files set.
			if ev.EventType == model.EventTypePush && !matchesFiles(ev.ChangedFiles, pattern.FilePatterns) {
				continue
			}

			matched = append(matched, pattern.Workflows...)
		}
	}

	return matched
}

// matchesFiles reports whether any changed file matches any configured
// pattern. An empty pattern list means no constraint.
func matchesFiles(changedFiles, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, file := range changedFiles {
		if wildcard.MatchAny(file, patterns) {
			return true
		}
	}
	return false
}
