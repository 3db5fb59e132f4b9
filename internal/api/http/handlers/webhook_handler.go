package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/call-triage-service/internal/service"
)

const signatureHeader = "X-Webhook-Signature"

// WebhookHandler exposes the call-event entry point.
type WebhookHandler struct {
	service *service.WebhookService
}

// NewWebhookHandler constructs handler.
func NewWebhookHandler(webhookService *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{service: webhookService}
}

// HandleEvent POST /webhooks/call-events.
func (h *WebhookHandler) HandleEvent(c *fiber.Ctx) error {
	raw := c.Body()

	if err := h.service.VerifySignature(raw, c.Get(signatureHeader)); err != nil {
		return err
	}

	ack, err := h.service.Process(c.UserContext(), raw)
	if err != nil {
		return err
	}
	return c.JSON(ack)
}

// Status GET /webhooks/call-events. Static capability metadata for the
// platform's endpoint check.
func (h *WebhookHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"identification_methods": []string{
			"assistant_id",
			"phone_number",
			"call_id",
		},
		"event_types": []string{
			"call-started",
			"call-ended",
			"status-update",
			"tool-calls",
			"emergency-check",
		},
	})
}
