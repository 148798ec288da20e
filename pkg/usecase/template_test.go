package usecase_test

import (
	"testing"

	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestSubstitute(t *testing.T) {
	vars := map[string]string{
		"owner":     "folio-org",
		"pr_number": "42",
	}

	tests := []struct {
		name  string
		value any
		want  any
	}{
		{
			name:  "Single placeholder",
			value: "{owner}",
			want:  "folio-org",
		},
		{
			name:  "Placeholder inside text",
			value: "PR #{pr_number} for {owner}",
			want:  "PR #42 for folio-org",
		},
		{
			name:  "No placeholders is idempotent",
			value: "plain string",
			want:  "plain string",
		},
		{
			name:  "Unknown placeholder left verbatim",
			value: "{unknown}",
			want:  "{unknown}",
		},
		{
			name:  "Non-string leaf passes through",
			value: 42,
			want:  42,
		},
		{
			name: "Map values substituted, keys preserved",
			value: map[string]any{
				"pr":    "{pr_number}",
				"other": "{unknown}",
			},
			want: map[string]any{
				"pr":    "42",
				"other": "{unknown}",
			},
		},
		{
			name:  "Slice elements substituted in order",
			value: []any{"{owner}", "literal", 1},
			want:  []any{"folio-org", "literal", 1},
		},
		{
			name: "Nested structures",
			value: map[string]any{
				"list": []any{map[string]any{"owner": "{owner}"}},
			},
			want: map[string]any{
				"list": []any{map[string]any{"owner": "folio-org"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, usecase.Substitute(tt.value, vars)).Equal(tt.want)
		})
	}
}

func TestBuildDispatchRequest(t *testing.T) {
	ev := &model.CanonicalEvent{
		EventType:    model.EventTypePullRequest,
		Repo:         model.RepoInfo{Owner: "folio-org", Name: "app-core"},
		HeadSHA:      "headsha",
		PRNumber:     "42",
		Merged:       "false",
		IsMergeGroup: "false",
	}

	spec := &model.WorkflowSpec{
		Owner:        "{owner}",
		Repository:   "ci-repo",
		WorkflowFile: "check.yml",
		Ref:          "",
		Inputs: map[string]any{
			"pr":      "{pr_number}",
			"sha":     "{head_sha}",
			"count":   3,
			"enabled": true,
		},
	}

	req := usecase.BuildDispatchRequest(spec, ev.TemplateVars())

	gt.Value(t, req.Owner).Equal("folio-org")
	gt.Value(t, req.Repository).Equal("ci-repo")
	gt.Value(t, req.WorkflowFile).Equal("check.yml")
	gt.Value(t, req.Ref).Equal("main") // empty ref defaults to main
	gt.Value(t, req.Inputs["pr"]).Equal("42")
	gt.Value(t, req.Inputs["sha"]).Equal("headsha")
	gt.Value(t, req.Inputs["count"]).Equal("3")
	gt.Value(t, req.Inputs["enabled"]).Equal("true")
}
