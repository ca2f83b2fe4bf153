package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"declaration-service/internal/models"
	"declaration-service/internal/services"
	"declaration-service/shared/utils"

	"github.com/gofiber/fiber/v3"
)

type DeclarationHandler struct {
	declarationService *services.DeclarationService
}

func NewDeclarationHandler(declarationService *services.DeclarationService) *DeclarationHandler {
	return &DeclarationHandler{
		declarationService: declarationService,
	}
}

func (h *DeclarationHandler) RegisterRoutes(app *fiber.App) {
	protectedGr := app.Group(protectedPrefix)

	declarationGr := protectedGr.Group("/declarations")
	declarationGr.Get("/inbound", h.SearchInbound)
	declarationGr.Get("/:id", h.GetDeclarationByID)
	declarationGr.Post("/", h.CreateOutbound)
}

func (h *DeclarationHandler) SearchInbound(c fiber.Ctx) error {
	summaries, err := h.declarationService.SearchInbound(c.Context(), c.Query("search"))
	if err != nil {
		slog.Error("failed to search inbound declarations", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(utils.CreateErrorResponse(utils.CodeInternal, "Failed to load declarations"))
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(summaries))
}

func (h *DeclarationHandler) GetDeclarationByID(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return badRequest(c, "Invalid declaration id")
	}

	declaration, err := h.declarationService.GetDeclaration(c.Context(), id)
	if err != nil {
		return writeLookupError(c, err, "Declaration")
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(declaration))
}

// CreateOutbound accepts either payload shape: based-on-existing or fresh.
func (h *DeclarationHandler) CreateOutbound(c fiber.Ctx) error {
	userID, err := requireUser(c)
	if userID == "" {
		return err
	}

	var req models.CreateDeclarationRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return badRequest(c, "Invalid request body")
	}

	declaration, err := h.declarationService.CreateOutbound(c.Context(), userID, req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDeclaration) {
			return badRequest(c, err.Error())
		}
		slog.Error("failed to create declaration", "user_id", userID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(utils.CreateErrorResponse(utils.CodeInternal, "Failed to create declaration"))
	}
	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(declaration))
}
