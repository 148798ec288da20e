package model

import "time"

// DispatchRequest is a fully-resolved workflow invocation: every template
// placeholder has been substituted and all input values are strings
type DispatchRequest struct {
	Owner        string            `json:"owner"`
	Repository   string            `json:"repository"`
	WorkflowFile string            `json:"workflow_file"`
	Ref          string            `json:"ref"`
	Inputs       map[string]string `json:"inputs,omitempty"`
}

// DispatchRecord is the audit entry written after each dispatch attempt
type DispatchRecord struct {
	DeliveryID   string    `firestore:"delivery_id" json:"delivery_id"`
	EventType    string    `firestore:"event_type" json:"event_type"`
	Action       string    `firestore:"action" json:"action"`
	Owner        string    `firestore:"owner" json:"owner"`
	Repository   string    `firestore:"repository" json:"repository"`
	WorkflowFile string    `firestore:"workflow_file" json:"workflow_file"`
	Ref          string    `firestore:"ref" json:"ref"`
	Succeeded    bool      `firestore:"succeeded" json:"succeeded"`
	Error        string    `firestore:"error,omitempty" json:"error,omitempty"`
	DispatchedAt time.Time `firestore:"dispatched_at" json:"dispatched_at"`
}

// BatchResult aggregates the outcome of processing a batch of queue
// messages. A message counts as processed even when it resolves to zero
// dispatches; it counts as an error only when its body cannot be parsed or
// every stage of its processing failed.
type BatchResult struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}
