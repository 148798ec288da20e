package model

import "encoding/json"

// Raw webhook payload shapes. Each event type encodes "head" and "base"
// differently (top-level fields, nested head/base objects, or an embedded
// pull request list); only the fields the normalizer reads are declared.
// Numeric identifiers are json.Number so that an absent id stringifies to ""
// instead of "0".

// PayloadRepository is the repository object shared by all payloads
type PayloadRepository struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// RepoInfo extracts the immutable (owner, name) pair
func (r *PayloadRepository) RepoInfo() RepoInfo {
	return RepoInfo{
		Owner: r.Owner.Login,
		Name:  r.Name,
	}
}

// RepoPayload carries only the repository object, for event types without a
// dedicated normalizer
type RepoPayload struct {
	Repository PayloadRepository `json:"repository"`
}

// PushPayload is the payload shape of push events
type PushPayload struct {
	Ref        string            `json:"ref"`
	After      string            `json:"after"`
	Repository PayloadRepository `json:"repository"`
	Commits    []PushCommit      `json:"commits"`
}

// PushCommit is a single commit entry in a push payload
type PushCommit struct {
	Added    []string `json:"added"`
	Modified []string `json:"modified"`
	Removed  []string `json:"removed"`
}

// MergeGroupPayload is the payload shape of merge_group events
type MergeGroupPayload struct {
	Repository PayloadRepository `json:"repository"`
	MergeGroup struct {
		ID      json.Number `json:"id"`
		HeadRef string      `json:"head_ref"`
		BaseRef string      `json:"base_ref"`
		HeadSHA string      `json:"head_sha"`
		BaseSHA string      `json:"base_sha"`
	} `json:"merge_group"`
}

// PullRequestPayload is the payload shape of pull_request events
type PullRequestPayload struct {
	Repository  PayloadRepository `json:"repository"`
	PullRequest struct {
		ID     json.Number `json:"id"`
		Number json.Number `json:"number"`
		Merged bool        `json:"merged"`
		Head   BranchRef   `json:"head"`
		Base   BranchRef   `json:"base"`
	} `json:"pull_request"`
}

// BranchRef is the head/base sub-object of a pull request
type BranchRef struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

// CheckTarget is the object keyed by the event type name in check_suite and
// check_run payloads. Both shapes expose the same fields the normalizer needs.
type CheckTarget struct {
	ID           json.Number `json:"id"`
	HeadBranch   string      `json:"head_branch"`
	HeadSHA      string      `json:"head_sha"`
	PullRequests []struct {
		Number json.Number `json:"number"`
		Base   BranchRef   `json:"base"`
	} `json:"pull_requests"`
}

// CheckSuitePayload is the payload shape of check_suite events
type CheckSuitePayload struct {
	Repository PayloadRepository `json:"repository"`
	CheckSuite CheckTarget       `json:"check_suite"`
}

// CheckRunPayload is the payload shape of check_run events
type CheckRunPayload struct {
	Repository PayloadRepository `json:"repository"`
	CheckRun   CheckTarget       `json:"check_run"`
}
