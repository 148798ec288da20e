package usecase

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

// normalizeFunc converts one raw payload shape into canonical event fields.
// Implementations must be total: absent or malformed payload fields degrade
// to the event's defaults, never to an error.
type normalizeFunc func(ev *model.CanonicalEvent, payload []byte)

var normalizers = map[model.EventType]normalizeFunc{
	model.EventTypePush:        normalizePush,
	model.EventTypeMergeGroup:  normalizeMergeGroup,
	model.EventTypePullRequest: normalizePullRequest,
	model.EventTypeCheckSuite:  normalizeCheckSuite,
	model.EventTypeCheckRun:    normalizeCheckRun,
}

// NormalizeEvent converts a queue message into exactly one CanonicalEvent.
// Dispatch is keyed by event type; unrecognized types fall through to a
// default normalizer that populates only the envelope fields and the
// repository. Construction never fails.
func NormalizeEvent(msg *model.QueueMessage) *model.CanonicalEvent {
	ev := &model.CanonicalEvent{
		EventType:    msg.EventType,
		Action:       msg.Action,
		DeliveryID:   msg.DeliveryID,
		Merged:       "false",
		IsMergeGroup: "false",
	}

	normalize, ok := normalizers[ev.EventType]
	if !ok {
		normalize = normalizeDefault
	}
	normalize(ev, msg.Payload)

	return ev
}

func normalizeDefault(ev *model.CanonicalEvent, payload []byte) {
	var p model.RepoPayload
	_ = json.Unmarshal(payload, &p)
	ev.Repo = p.Repository.RepoInfo()
}

func normalizePush(ev *model.CanonicalEvent, payload []byte) {
	var p model.PushPayload
	_ = json.Unmarshal(payload, &p)

	ev.Repo = p.Repository.RepoInfo()
	ev.HeadBranch = strings.TrimPrefix(p.Ref, "refs/heads/")
	ev.HeadSHA = p.After
	ev.ChangedFiles = collectChangedFiles(p.Commits)
}

// collectChangedFiles returns the de-duplicated union of added, modified and
// removed paths across all commits. The result is sorted for determinism;
// ordering carries no meaning downstream.
func collectChangedFiles(commits []model.PushCommit) []string {
	seen := map[string]struct{}{}
	for _, commit := range commits {
		for _, paths := range [][]string{commit.Added, commit.Modified, commit.Removed} {
			for _, path := range paths {
				seen[path] = struct{}{}
			}
		}
	}

	if len(seen) == 0 {
		return nil
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

func normalizeMergeGroup(ev *model.CanonicalEvent, payload []byte) {
	var p model.MergeGroupPayload
	_ = json.Unmarshal(payload, &p)

	ev.Repo = p.Repository.RepoInfo()
	ev.HeadBranch = strings.TrimPrefix(p.MergeGroup.HeadRef, "refs/heads/")
	ev.BaseBranch = strings.TrimPrefix(p.MergeGroup.BaseRef, "refs/heads/")
	ev.HeadSHA = p.MergeGroup.HeadSHA
	ev.BaseSHA = p.MergeGroup.BaseSHA
	ev.IsMergeGroup = "true"

	// A merge group may aggregate multiple PRs, so no single PR number is
	// attributable; only the group's synthetic id is recorded.
	id := p.MergeGroup.ID.String()
	ev.EventID = id
	ev.CheckSuiteID = id
}

func normalizePullRequest(ev *model.CanonicalEvent, payload []byte) {
	var p model.PullRequestPayload
	_ = json.Unmarshal(payload, &p)

	pr := p.PullRequest
	ev.Repo = p.Repository.RepoInfo()
	ev.HeadBranch = pr.Head.Ref
	ev.BaseBranch = pr.Base.Ref
	ev.HeadSHA = pr.Head.SHA
	ev.BaseSHA = pr.Base.SHA
	ev.PRNumber = pr.Number.String()
	ev.Merged = strconv.FormatBool(pr.Merged)
	ev.EventID = pr.ID.String()
}

func normalizeCheckSuite(ev *model.CanonicalEvent, payload []byte) {
	var p model.CheckSuitePayload
	_ = json.Unmarshal(payload, &p)
	ev.Repo = p.Repository.RepoInfo()
	normalizeCheckTarget(ev, &p.CheckSuite)
}

func normalizeCheckRun(ev *model.CanonicalEvent, payload []byte) {
	var p model.CheckRunPayload
	_ = json.Unmarshal(payload, &p)
	ev.Repo = p.Repository.RepoInfo()
	normalizeCheckTarget(ev, &p.CheckRun)
}

// normalizeCheckTarget fills the fields shared by check_suite and check_run:
// head information comes from the target object itself, PR information from
// the first entry of its pull_requests array when present
func normalizeCheckTarget(ev *model.CanonicalEvent, target *model.CheckTarget) {
	ev.HeadBranch = target.HeadBranch
	ev.HeadSHA = target.HeadSHA

	if len(target.PullRequests) > 0 {
		pr := target.PullRequests[0]
		ev.PRNumber = pr.Number.String()
		ev.BaseBranch = pr.Base.Ref
		ev.BaseSHA = pr.Base.SHA
	}

	id := target.ID.String()
	ev.EventID = id
	ev.CheckSuiteID = id
}
