package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"declaration-service/internal/repository"
	"declaration-service/internal/services"
	"declaration-service/internal/wizard"
	"declaration-service/shared/utils"

	"github.com/gofiber/fiber/v3"
)

const protectedPrefix = "declaration/protected/api/v1"

func requireUser(c fiber.Ctx) (string, error) {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return "", c.Status(http.StatusUnauthorized).JSON(utils.CreateErrorResponse(utils.CodeUnauthorized, "User ID is required"))
	}
	return userID, nil
}

func badRequest(c fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse(utils.CodeBadRequest, message))
}

// writeWizardError maps a wizard operation error to a response. Refused
// transitions carry the unchanged wizard result so the client can show the
// notification.
func writeWizardError(c fiber.Ctx, result services.WizardResult, err error) error {
	if blocked, ok := wizard.AsBlocked(err); ok {
		status, code := http.StatusUnprocessableEntity, utils.CodeValidationBlocked
		switch blocked.Kind {
		case wizard.KindValidationPending:
			code = utils.CodeValidationInProgress
		case wizard.KindComplianceBlocked:
			code = utils.CodeComplianceBlocked
		case wizard.KindSubmissionFailed:
			status, code = http.StatusBadGateway, utils.CodeSubmissionFailed
		case wizard.KindInternal:
			status, code = http.StatusInternalServerError, utils.CodeInternal
		}
		return c.Status(status).JSON(utils.CreateErrorResponseWithDetails(code, blocked.Message, result))
	}

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return c.Status(http.StatusNotFound).JSON(utils.CreateErrorResponse(utils.CodeNotFound, "Wizard session not found"))
	case errors.Is(err, wizard.ErrUnknownSource), errors.Is(err, wizard.ErrUnknownPreset):
		return badRequest(c, err.Error())
	default:
		slog.Error("wizard operation failed", "path", c.Path(), "error", err)
		return c.Status(http.StatusInternalServerError).JSON(utils.CreateErrorResponse(utils.CodeInternal, "Internal server error"))
	}
}

func writeLookupError(c fiber.Ctx, err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(http.StatusNotFound).JSON(utils.CreateErrorResponse(utils.CodeNotFound, what+" not found"))
	}
	slog.Error("lookup failed", "path", c.Path(), "error", err)
	return c.Status(http.StatusInternalServerError).JSON(utils.CreateErrorResponse(utils.CodeInternal, "Internal server error"))
}

// readUpload reads the multipart "file" field, refusing anything larger than
// maxSize bytes when maxSize is positive.
func readUpload(c fiber.Ctx, maxSize int64) (string, []byte, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("file is required: %w", err)
	}
	if maxSize > 0 && header.Size > maxSize {
		return "", nil, fmt.Errorf("file exceeds %d bytes", maxSize)
	}

	f, err := header.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return header.Filename, data, nil
}
