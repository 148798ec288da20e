package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

// WebhookHandler receives GitHub webhooks and enqueues supported events
type WebhookHandler struct {
	secret    string
	publisher message.Publisher
	topic     string
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(secret string, publisher message.Publisher, topic string) *WebhookHandler {
	return &WebhookHandler{
		secret:    secret,
		publisher: publisher,
		topic:     topic,
	}
}

// Handle verifies, filters and enqueues webhook deliveries. Events of
// unsupported types are acknowledged with 200 and dropped.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeError(w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get("X-Hub-Signature-256")
	if !h.verifySignature(body, signature) {
		logger.Warn("Invalid webhook signature")
		writeError(w, goerr.New("invalid signature"), http.StatusUnauthorized)
		return
	}

	eventType := model.EventType(r.Header.Get("X-GitHub-Event"))
	deliveryID := r.Header.Get("X-GitHub-Delivery")

	if !eventType.IsSupported() {
		logger.Info("Ignoring unsupported event type",
			"event_type", eventType,
			"delivery_id", deliveryID,
		)
		writeAccepted(w, deliveryID, "ignored")
		return
	}

	// Only the action field is needed before queueing. The consumer
	// normalizes the full payload.
	var envelope struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		logger.Error("Failed to parse webhook payload", "error", err)
		writeError(w, goerr.Wrap(err, "invalid JSON payload"), http.StatusBadRequest)
		return
	}

	queueMsg := &model.QueueMessage{
		EventType:  eventType,
		Action:     envelope.Action,
		DeliveryID: deliveryID,
		Payload:    body,
	}

	data, err := json.Marshal(queueMsg)
	if err != nil {
		logger.Error("Failed to encode queue message", "error", err)
		writeError(w, goerr.Wrap(err, "failed to encode queue message"), http.StatusInternalServerError)
		return
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.Metadata.Set("delivery_id", deliveryID)
	msg.Metadata.Set("event_type", string(eventType))

	if err := h.publisher.Publish(h.topic, msg); err != nil {
		logger.Error("Failed to publish queue message", "error", err)
		writeError(w, goerr.Wrap(err, "failed to enqueue event"), http.StatusInternalServerError)
		return
	}

	logger.Info("Enqueued webhook event",
		"event_type", eventType,
		"action", envelope.Action,
		"delivery_id", deliveryID,
	)
	writeAccepted(w, deliveryID, "queued")
}

// verifySignature verifies the webhook HMAC-SHA256 signature
func (h *WebhookHandler) verifySignature(payload []byte, signature string) bool {
	if signature == "" {
		return false
	}

	signature = strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(payload)
	expectedMAC := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expectedMAC))
}

func writeAccepted(w http.ResponseWriter, deliveryID, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":      status,
		"delivery_id": deliveryID,
	}); err != nil {
		ctxlog.From(context.Background()).Error("Failed to encode response", "error", err)
	}
}
