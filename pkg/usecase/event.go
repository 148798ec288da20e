package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
)

type eventUseCase struct {
	cfg         *model.Config
	dispatcher  interfaces.WorkflowDispatcher
	recorder    interfaces.DispatchRecorder
	failOnError bool
}

// Option is a functional option for the event use case
type Option func(*eventUseCase)

// WithRecorder sets the dispatch audit recorder
func WithRecorder(recorder interfaces.DispatchRecorder) Option {
	return func(uc *eventUseCase) {
		uc.recorder = recorder
	}
}

// WithFailOnError makes ProcessBatch return an error when any message in
// the batch failed, to signal redelivery upstream. Without it, partial
// failures are logged and counted but the batch still succeeds.
func WithFailOnError() Option {
	return func(uc *eventUseCase) {
		uc.failOnError = true
	}
}

// NewEvent creates a new instance of EventUseCase. The mapping config is
// loaded by the caller once per invocation batch and treated as immutable.
func NewEvent(cfg *model.Config, dispatcher interfaces.WorkflowDispatcher, opts ...Option) interfaces.EventUseCase {
	uc := &eventUseCase{
		cfg:        cfg,
		dispatcher: dispatcher,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ProcessMessage normalizes one queue message, resolves the mapping rules
// and dispatches every matching workflow. Dispatch failures are isolated per
// workflow spec: each remaining spec is still attempted, and the combined
// failure is returned for the caller to count.
func (uc *eventUseCase) ProcessMessage(ctx context.Context, msg *model.QueueMessage) error {
	logger := ctxlog.From(ctx)

	ev := NormalizeEvent(msg)

	logger.Info("Processing webhook event",
		"event_type", ev.EventType,
		"action", ev.Action,
		"delivery_id", ev.DeliveryID,
		"owner", ev.Repo.Owner,
		"repository", ev.Repo.Name,
	)

	workflows := ResolveWorkflows(ev, uc.cfg)
	if len(workflows) == 0 {
		logger.Info("No matching workflows",
			"delivery_id", ev.DeliveryID,
			"owner", ev.Repo.Owner,
			"repository", ev.Repo.Name,
		)
		return nil
	}

	vars := ev.TemplateVars()

	var dispatchErrs []error
	for i := range workflows {
		req := BuildDispatchRequest(&workflows[i], vars)

		err := uc.dispatcher.Dispatch(ctx, req)
		if err != nil {
			logger.Error("Failed to dispatch workflow",
				"error", err,
				"delivery_id", ev.DeliveryID,
				"workflow_file", req.WorkflowFile,
				"target", req.Owner+"/"+req.Repository,
			)
			dispatchErrs = append(dispatchErrs, err)
		} else {
			logger.Info("Dispatched workflow",
				"delivery_id", ev.DeliveryID,
				"workflow_file", req.WorkflowFile,
				"target", req.Owner+"/"+req.Repository,
				"ref", req.Ref,
			)
		}

		uc.record(ctx, ev, req, err)
	}

	if len(dispatchErrs) > 0 {
		return goerr.Wrap(dispatchErrs[0], "workflow dispatch failed",
			goerr.V("delivery_id", ev.DeliveryID),
			goerr.V("failed", len(dispatchErrs)),
			goerr.V("total", len(workflows)),
		)
	}

	return nil
}

// record writes a dispatch audit entry. Recorder failures are logged only;
// they never affect event processing.
func (uc *eventUseCase) record(ctx context.Context, ev *model.CanonicalEvent, req *model.DispatchRequest, dispatchErr error) {
	if uc.recorder == nil {
		return
	}

	rec := &model.DispatchRecord{
		DeliveryID:   ev.DeliveryID,
		EventType:    string(ev.EventType),
		Action:       ev.Action,
		Owner:        req.Owner,
		Repository:   req.Repository,
		WorkflowFile: req.WorkflowFile,
		Ref:          req.Ref,
		Succeeded:    dispatchErr == nil,
		DispatchedAt: time.Now(),
	}
	if dispatchErr != nil {
		rec.Error = dispatchErr.Error()
	}

	if err := uc.recorder.Record(ctx, rec); err != nil {
		ctxlog.From(ctx).Warn("Failed to record dispatch",
			"error", err,
			"delivery_id", ev.DeliveryID,
		)
	}
}

// ProcessBatch processes raw message bodies, isolating failures: a malformed
// or failing message never aborts its siblings. The aggregated counts are
// always returned; an error is returned alongside them only when the
// fail-on-error option is set and at least one message failed.
func (uc *eventUseCase) ProcessBatch(ctx context.Context, bodies [][]byte) (*model.BatchResult, error) {
	logger := ctxlog.From(ctx)
	result := &model.BatchResult{}

	for _, body := range bodies {
		var msg model.QueueMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			logger.Error("Failed to parse message body", "error", err)
			result.Errors++
			continue
		}

		if err := uc.ProcessMessage(ctx, &msg); err != nil {
			logger.Error("Failed to process message",
				"error", err,
				"delivery_id", msg.DeliveryID,
			)
			result.Errors++
			continue
		}

		result.Processed++
	}

	logger.Info("Batch complete",
		"processed", result.Processed,
		"errors", result.Errors,
	)

	if uc.failOnError && result.Errors > 0 {
		return result, goerr.New("batch finished with errors",
			goerr.V("processed", result.Processed),
			goerr.V("errors", result.Errors),
		)
	}

	return result, nil
}
