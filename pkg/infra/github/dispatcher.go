package github

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
)

type dispatcher struct {
	githubClient *github.Client
}

// NewDispatcher creates a workflow dispatcher with GitHub App authentication
func NewDispatcher(appID, installationID int64, privateKey []byte) (interfaces.WorkflowDispatcher, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport")
	}

	return NewDispatcherWithClient(github.NewClient(&http.Client{Transport: itr})), nil
}

// NewDispatcherWithClient creates a workflow dispatcher using the given
// GitHub client. Mainly for testing with a stub API server.
func NewDispatcherWithClient(client *github.Client) interfaces.WorkflowDispatcher {
	return &dispatcher{githubClient: client}
}

// Dispatch triggers a workflow_dispatch event for the resolved request
func (d *dispatcher) Dispatch(ctx context.Context, req *model.DispatchRequest) error {
	event := github.CreateWorkflowDispatchEventRequest{
		Ref: req.Ref,
	}
	if len(req.Inputs) > 0 {
		inputs := make(map[string]any, len(req.Inputs))
		for key, value := range req.Inputs {
			inputs[key] = value
		}
		event.Inputs = inputs
	}

	_, err := d.githubClient.Actions.CreateWorkflowDispatchEventByFileName(
		ctx, req.Owner, req.Repository, workflowID(req.WorkflowFile), event)
	if err != nil {
		return goerr.Wrap(err, "failed to dispatch workflow",
			goerr.V("owner", req.Owner),
			goerr.V("repository", req.Repository),
			goerr.V("workflow_file", req.WorkflowFile),
			goerr.V("ref", req.Ref),
		)
	}

	return nil
}

// workflowID reduces a configured workflow file path to the filename the
// dispatch API expects (e.g. ".github/workflows/pr-check.yml" -> "pr-check.yml")
func workflowID(file string) string {
	file = strings.TrimPrefix(file, "/")
	if file == "" {
		return ""
	}
	return path.Base(file)
}
