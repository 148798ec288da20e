package model

import "encoding/json"

// EventType represents the type of webhook event received
type EventType string

const (
	EventTypePush        EventType = "push"
	EventTypeMergeGroup  EventType = "merge_group"
	EventTypePullRequest EventType = "pull_request"
	EventTypeCheckSuite  EventType = "check_suite"
	EventTypeCheckRun    EventType = "check_run"
)

// IsSupported checks if the event type has a dedicated normalizer
func (t EventType) IsSupported() bool {
	switch t {
	case EventTypePush, EventTypeMergeGroup, EventTypePullRequest, EventTypeCheckSuite, EventTypeCheckRun:
		return true
	default:
		return false
	}
}

// RepoInfo is the (owner, name) pair extracted from a webhook payload.
// Both fields may be empty when the payload omits the repository object.
type RepoInfo struct {
	Owner string
	Name  string
}

// QueueMessage is the envelope handed from the webhook listener to the
// processing pipeline via the queue
type QueueMessage struct {
	EventType  EventType       `json:"event_type"`
	Action     string          `json:"action"`
	DeliveryID string          `json:"delivery_id"`
	Payload    json.RawMessage `json:"payload"`
}

// CanonicalEvent is the normalized record produced from one webhook
// delivery. All scalar fields are strings; fields that do not apply to the
// event type stay empty, except Merged and IsMergeGroup which are always
// "true" or "false".
type CanonicalEvent struct {
	EventType    EventType
	Action       string
	DeliveryID   string
	Repo         RepoInfo
	HeadBranch   string
	BaseBranch   string
	HeadSHA      string
	BaseSHA      string
	PRNumber     string
	Merged       string
	IsMergeGroup string
	EventID      string
	CheckSuiteID string

	// ChangedFiles is populated only for push events: the de-duplicated
	// union of added, modified and removed paths across all commits.
	ChangedFiles []string
}

// TemplateVars returns the variable set available to template substitution,
// covering every scalar field of the event
func (e *CanonicalEvent) TemplateVars() map[string]string {
	return map[string]string{
		"owner":          e.Repo.Owner,
		"repository":     e.Repo.Name,
		"head_sha":       e.HeadSHA,
		"head_branch":    e.HeadBranch,
		"base_branch":    e.BaseBranch,
		"base_sha":       e.BaseSHA,
		"pr_number":      e.PRNumber,
		"merged":         e.Merged,
		"is_merge_group": e.IsMergeGroup,
		"event_id":       e.EventID,
		"check_suite_id": e.CheckSuiteID,
	}
}

// PrimaryBranch selects the branch that Single/List branch constraints are
// matched against: the base branch for pull_request events, the head branch
// for everything else. The selection is fixed per event type and never falls
// back to the other side.
func (e *CanonicalEvent) PrimaryBranch() string {
	if e.EventType == EventTypePullRequest {
		return e.BaseBranch
	}
	return e.HeadBranch
}
