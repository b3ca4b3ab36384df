package api

import (
	"bytes"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"realflow/internal/intake"
	"realflow/internal/validation"
	"realflow/internal/webhook"
)

// WebhookHandler receives voice platform events.
type WebhookHandler struct {
	decoders  map[string]webhook.Decoder
	processor *intake.Processor
	logger    *slog.Logger
}

// NewWebhookHandler creates a webhook handler serving one route per decoder vendor.
func NewWebhookHandler(processor *intake.Processor, logger *slog.Logger, decoders ...webhook.Decoder) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &WebhookHandler{
		decoders:  make(map[string]webhook.Decoder, len(decoders)),
		processor: processor,
		logger:    logger,
	}
	for _, d := range decoders {
		h.decoders[d.Vendor()] = d
	}
	return h
}

// Receive handles POST /webhook/:vendor. Only malformed payloads are
// rejected; persistence problems still acknowledge with 200.
func (h *WebhookHandler) Receive(c fiber.Ctx) error {
	vendor := c.Params("vendor")
	dec, ok := h.decoders[vendor]
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "unknown vendor")
	}

	// The request buffer is reused after the handler returns.
	body := bytes.Clone(c.Body())

	ev, err := dec.Decode(body)
	if err != nil {
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			h.logger.Warn("rejected webhook payload", "vendor", vendor, "error", err)
			return jsonError(c, fiber.StatusBadRequest, verr.Error())
		}
		h.logger.Error("failed to decode webhook", "vendor", vendor, "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to decode webhook")
	}

	ack := h.processor.Process(c.Context(), ev)
	return c.JSON(ack)
}
