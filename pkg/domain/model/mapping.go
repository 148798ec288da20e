package model

import (
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/drover/pkg/utils/wildcard"
	"github.com/m-mizutani/goerr/v2"
)

// Config is the declarative workflow-mapping rule set. It is loaded once per
// invocation batch and treated as immutable during processing.
type Config struct {
	EventMappings []MappingRule `json:"event_mappings"`
}

// MappingRule maps one event type (optionally restricted to a set of
// actions) to a sequence of repository patterns
type MappingRule struct {
	EventType          string        `json:"event_type"`
	Actions            []string      `json:"actions,omitempty"`
	RepositoryPatterns []RepoPattern `json:"repository_patterns"`
}

// AppliesTo reports whether the rule covers the given action. An absent
// actions list covers every action.
func (r *MappingRule) AppliesTo(action string) bool {
	if len(r.Actions) == 0 {
		return true
	}
	for _, a := range r.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// RepoPattern constrains a rule to repositories, branches and changed files,
// and carries the workflows to dispatch when all constraints match
type RepoPattern struct {
	Owner        string           `json:"owner"`
	Repository   string           `json:"repository"`
	Branches     BranchConstraint `json:"branches"`
	FilePatterns []string         `json:"file_patterns,omitempty"`
	Workflows    []WorkflowSpec   `json:"workflows"`
}

// WorkflowSpec identifies a workflow to dispatch. String values, including
// input values, may contain {variable} placeholders resolved against the
// canonical event.
type WorkflowSpec struct {
	Owner        string         `json:"owner"`
	Repository   string         `json:"repository"`
	WorkflowFile string         `json:"workflow_file"`
	Ref          string         `json:"ref"`
	Inputs       map[string]any `json:"inputs,omitempty"`
}

// BranchConstraintKind discriminates the branch constraint variants
type BranchConstraintKind int

const (
	// BranchAny matches any branch. This is the zero value, so an absent
	// branches field in the config imposes no branch constraint.
	BranchAny BranchConstraintKind = iota
	// BranchSingle matches the event's primary branch against one pattern
	BranchSingle
	// BranchList matches the event's primary branch against any of a list
	// of patterns
	BranchList
	// BranchBaseHead matches base and head branches against separate
	// pattern lists
	BranchBaseHead
)

// BranchConstraint is a tagged variant decoded from the loosely-typed
// branches config value: "*" (any), a single pattern string, a pattern list,
// or a {base, head} object
type BranchConstraint struct {
	Kind     BranchConstraintKind
	Patterns []string // BranchSingle (one entry) and BranchList
	Base     []string // BranchBaseHead
	Head     []string // BranchBaseHead
}

// UnmarshalJSON decodes the branches value into the tagged variant
func (c *BranchConstraint) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "*" {
			*c = BranchConstraint{Kind: BranchAny}
		} else {
			*c = BranchConstraint{Kind: BranchSingle, Patterns: []string{single}}
		}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*c = BranchConstraint{Kind: BranchList, Patterns: list}
		return nil
	}

	var scoped struct {
		Base []string `json:"base"`
		Head []string `json:"head"`
	}
	if err := json.Unmarshal(data, &scoped); err == nil {
		*c = BranchConstraint{Kind: BranchBaseHead, Base: scoped.Base, Head: scoped.Head}
		return nil
	}

	return goerr.New("branches must be a string, a pattern list, or a base/head object",
		goerr.V("value", string(data)))
}

// MarshalJSON encodes the constraint back into its config representation
func (c BranchConstraint) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case BranchAny:
		return json.Marshal("*")
	case BranchSingle:
		if len(c.Patterns) == 1 {
			return json.Marshal(c.Patterns[0])
		}
		return json.Marshal(c.Patterns)
	case BranchList:
		return json.Marshal(c.Patterns)
	case BranchBaseHead:
		return json.Marshal(map[string][]string{
			"base": c.Base,
			"head": c.Head,
		})
	default:
		return nil, fmt.Errorf("unknown branch constraint kind: %d", c.Kind)
	}
}

// Invalid reports whether the constraint is a misconfiguration that can
// never match: a base/head object with both sides empty
func (c *BranchConstraint) Invalid() bool {
	return c.Kind == BranchBaseHead && len(c.Base) == 0 && len(c.Head) == 0
}

// Matches reports whether the event satisfies the branch constraint.
//
// Single and List match the event's primary branch (base for pull_request,
// head for everything else). A base/head constraint is never a wildcard: an
// empty one matches nothing, and it is unsupported for push events, which
// have no stable base branch.
func (c *BranchConstraint) Matches(ev *CanonicalEvent) bool {
	switch c.Kind {
	case BranchAny:
		return true
	case BranchSingle, BranchList:
		return wildcard.MatchAny(ev.PrimaryBranch(), c.Patterns)
	case BranchBaseHead:
		if c.Invalid() {
			return false
		}
		if ev.EventType == EventTypePush {
			return false
		}
		if len(c.Base) > 0 && !wildcard.MatchAny(ev.BaseBranch, c.Base) {
			return false
		}
		if len(c.Head) > 0 && !wildcard.MatchAny(ev.HeadBranch, c.Head) {
			return false
		}
		return true
	default:
		return false
	}
}

// Normalize applies defaults and returns configuration warnings for rule
// patterns that can never match. Warnings do not fail the load; the affected
// patterns simply never produce a dispatch.
func (c *Config) Normalize() []string {
	var warnings []string

	for i := range c.EventMappings {
		mapping := &c.EventMappings[i]
		for j := range mapping.RepositoryPatterns {
			pattern := &mapping.RepositoryPatterns[j]
			if pattern.Owner == "" {
				pattern.Owner = "*"
			}
			if pattern.Repository == "" {
				pattern.Repository = "*"
			}
			if pattern.Branches.Invalid() {
				warnings = append(warnings, fmt.Sprintf(
					"event_mappings[%d].repository_patterns[%d]: base/head branch constraint with both sides empty never matches", i, j))
			}
			if pattern.Branches.Kind == BranchBaseHead && mapping.EventType == string(EventTypePush) {
				warnings = append(warnings, fmt.Sprintf(
					"event_mappings[%d].repository_patterns[%d]: base/head branch constraint is unsupported for push events and never matches", i, j))
			}
		}
	}

	return warnings
}
