package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/technofriends/youtube-insights/errors"
	"github.com/technofriends/youtube-insights/models"
	"github.com/technofriends/youtube-insights/services/process"
	"github.com/technofriends/youtube-insights/validation"
)

type WebhookHandler struct {
	service   process.Service
	validator *validation.Validator
	logger    *logrus.Logger
}

func NewWebhookHandler(service process.Service, validator *validation.Validator) *WebhookHandler {
	return &WebhookHandler{
		service:   service,
		validator: validator,
		logger:    logrus.StandardLogger(),
	}
}

// ProcessVideo handles POST /process_video. Completed dispatches respond
// with 200 regardless of embedded failures; only a missing or inactive
// configuration yields 400.
func (h *WebhookHandler) ProcessVideo(c *fiber.Ctx) error {
	const op = "WebhookHandler.ProcessVideo"

	var req models.ProcessingRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.InvalidInput(op, err, "Invalid JSON payload")
	}

	logger := h.logger.WithFields(logrus.Fields{
		"video_id":   req.VideoID,
		"section":    req.Section(),
		"request_id": c.Get("X-Request-ID"),
	})
	logger.Info("Received webhook payload")

	if err := h.validator.ValidateVideoID(req.VideoID); err != nil {
		logger.WithError(err).Warn("Video ID validation failed")
		return err
	}
	if err := h.validator.ValidateSection(req.ApplicationSection); err != nil {
		logger.WithError(err).Warn("Section validation failed")
		return err
	}

	outcome, err := h.service.Process(c.Context(), req)
	if err != nil {
		return err
	}

	if outcome.Failed() {
		logger.WithField("error", outcome.Err).Warn("Request completed without a usable result")
	} else {
		logger.WithField("results", len(outcome.Results)).Info("Request completed")
	}

	return c.JSON(outcome.Payload())
}
