package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"declaration-service/internal/services"
	"declaration-service/internal/wizard"
	"declaration-service/shared/utils"

	"github.com/gofiber/fiber/v3"
)

type WizardHandler struct {
	wizardService *services.WizardService
	maxUploadSize int64
}

func NewWizardHandler(wizardService *services.WizardService, maxUploadSize int64) *WizardHandler {
	return &WizardHandler{
		wizardService: wizardService,
		maxUploadSize: maxUploadSize,
	}
}

func (h *WizardHandler) RegisterRoutes(app *fiber.App) {
	protectedGr := app.Group(protectedPrefix)

	wizardGr := protectedGr.Group("/wizards")
	wizardGr.Post("/", h.Open)
	wizardGr.Get("/:id", h.Get)
	wizardGr.Delete("/:id", h.Close)

	// draft editing
	wizardGr.Put("/:id/source", h.SetSource)
	wizardGr.Put("/:id/based-on", h.SetBasedOn)
	wizardGr.Post("/:id/items", h.AddItem)
	wizardGr.Patch("/:id/items/:itemID", h.UpdateItem)
	wizardGr.Delete("/:id/items/:itemID", h.RemoveItem)
	wizardGr.Put("/:id/validity", h.SelectPreset)
	wizardGr.Put("/:id/validity/dates", h.SetCustomDates)
	wizardGr.Put("/:id/customer", h.SelectCustomer)
	wizardGr.Put("/:id/references", h.SetReferences)
	wizardGr.Put("/:id/comments", h.SetComments)

	// uploads
	wizardGr.Post("/:id/geojson", h.UploadGeoJSON)
	wizardGr.Post("/:id/documents", h.UploadDocument)
	wizardGr.Delete("/:id/documents", h.RemoveDocument)

	// navigation
	wizardGr.Post("/:id/advance", h.Advance)
	wizardGr.Post("/:id/back", h.GoBack)
	wizardGr.Post("/:id/submit", h.Submit)
}

type setSourceRequest struct {
	Source wizard.Source `json:"source"`
}

type setBasedOnRequest struct {
	DeclarationIDs []int64 `json:"declarationIds"`
}

type updateItemRequest struct {
	Field wizard.ItemField `json:"field"`
	Value string           `json:"value"`
}

type selectPresetRequest struct {
	Preset wizard.ValidityPreset `json:"preset"`
}

type setDatesRequest struct {
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type selectCustomerRequest struct {
	CustomerID int64 `json:"customerId"`
}

type setCommentsRequest struct {
	Comments string `json:"comments"`
}

// wizardOp is a wizard service call bound to the caller and session.
type wizardOp func(c fiber.Ctx, userID, sessionID string) (services.WizardResult, error)

func (h *WizardHandler) run(c fiber.Ctx, op wizardOp) error {
	userID, err := requireUser(c)
	if userID == "" {
		return err
	}

	result, err := op(c, userID, c.Params("id"))
	if err != nil {
		return writeWizardError(c, result, err)
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(result))
}

// bind parses the JSON body into req before running op.
func bind[T any](h *WizardHandler, c fiber.Ctx, op func(c fiber.Ctx, userID, sessionID string, req T) (services.WizardResult, error)) error {
	var req T
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return badRequest(c, "Invalid request body")
	}
	return h.run(c, func(c fiber.Ctx, userID, sessionID string) (services.WizardResult, error) {
		return op(c, userID, sessionID, req)
	})
}

func (h *WizardHandler) Open(c fiber.Ctx) error {
	userID, err := requireUser(c)
	if userID == "" {
		return err
	}

	state, err := h.wizardService.Open(c.Context(), userID)
	if err != nil {
		return writeWizardError(c, services.WizardResult{}, err)
	}
	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(services.WizardResult{State: state}))
}

func (h *WizardHandler) Get(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx, userID, sessionID string) (services.WizardResult, error) {
		state, err := h.wizardService.Get(c.Context(), userID, sessionID)
		return services.WizardResult{State: state}, err
	})
}

func (h *WizardHandler) Close(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx, userID, sessionID string) (services.WizardResult, error) {
		return h.wizardService.Close(c.Context(), userID, sessionID)
	})
}

func (h *WizardHandler) SetSource(c fiber.Ctx) error {
	return bind(h, c, func(c fiber.Ctx, userID, sessionID string, req setSourceRequest) (services.WizardResult, error) {
		return h.wizardService.SetSource(c.Context(), userID, sessionID, req.Source)
	})
}

func (h *WizardHandler) SetBasedOn(c fiber.Ctx) error {
	return bind(h, c, func(c fiber.Ctx, userID, sessionID string, req setBasedOnRequest) (services.WizardResult, error) {
		return h.wizardService.SetBasedOn(c.Context(), userID, sessionID, req.DeclarationIDs)
	})
}

func (h *WizardHandler) AddItem(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx, userID, sessionID string) (services.WizardResult, error) {
		return h.wizardService.AddItem(c.Context(), userID, sessionID)
	})
}

func (h *WizardHandler) UpdateItem(c fiber.Ctx) error {
	var req updateItemRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if !req.Field.IsValid() {
		return badRequest(c, "Unknown item field: "+string(req.Field))
	}
	return h.run(c, func(c fiber.Ctx, userID, sessionID string) (services.WizardResult, error) {
		return h.wizardService.UpdateItem(c.Context(), userID, sessionID, c.Params("itemID"), req.Field, req.Value)
	})
}

func (h *WizardHandler) RemoveItem(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx, userID, sessionID string) (services.WizardResult, error) {
		return h.wizardService.RemoveItem(c.Context(), userID, sessionID, c.Params("itemID"))
	})
}

func (h *WizardHandler) SelectPreset(c fiber.Ctx) error {
	return bind(h, c, func(c fiber.Ctx, userID, sessionID string, req selectPresetRequest) (services.WizardResult, error) {
		return h.wizardService.SelectPreset(c.Context(), userID, sessionID, req.Preset)
	})
}

func (h *WizardHandler) SetCustomDates(c fiber.Ctx) error {
	return bind(h, c, func(c fiber.Ctx, userID, sessionID string, req setDatesRequest) (services.WizardResult, error) {
		return h.wizardService.SetCustomDates(c.Context(), userID, sessionID, req.StartDate, req.EndDate)
	})
}

func (h *WizardHandler) SelectCustomer(c fiber.Ctx) error {
	return bind(h, c, func(c fiber.Ctx, userID, sessionID string, req selectCustomerRequest) (services.WizardResult, error) {
		return h.wizardService.SelectCustomer(c.Context(), userID, sessionID, req.CustomerID)
	})
}

func (h *WizardHandler) SetReferences(c fiber.Ctx) error {
	return bind(h, c, func(c fiber.Ctx, userID, sessionID string, req wizard.ReferenceNumbers) (services.WizardResult, error) {
		return h.wizardService.SetReferences(c.Context(), userID, sessionID, utils.TrimAllStringFields(req))
	})
}

func (h *WizardHandler) SetComments(c fiber.Ctx) error {
	return bind(h, c, func(c fiber.Ctx, userID, sessionID string, req setCommentsRequest) (services.WizardResult, error) {
		return h.wizardService.SetComments(c.Context(), userID, sessionID, req.Comments)
	})
}

func (h *WizardHandler) UploadGeoJSON(c fiber.Ctx) error {
	fileName, data, err := readUpload(c, h.maxUploadSize)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return h.run(c, func(c fiber.Ctx, userID, sessionID string) (services.WizardResult, error) {
		return h.wizardService.UploadGeoJSON(c.Context(), userID, sessionID, fileName, data)
	})
}

func (h *WizardHandler) UploadDocument(c fiber.Ctx) error {
	fileName, data, err := readUpload(c, h.maxUploadSize)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return h.run(c, func(c fiber.Ctx, userID, sessionID string) (services.WizardResult, error) {
		return h.wizardService.UploadDocument(c.Context(), userID, sessionID, fileName, data)
	})
}

func (h *WizardHandler) RemoveDocument(c fiber.Ctx) error {
	objectName := c.Query("object")
	if objectName == "" {
		return badRequest(c, "object query parameter is required")
	}
	return h.run(c, func(c fiber.Ctx, userID, sessionID string) (services.WizardResult, error) {
		return h.wizardService.RemoveDocument(c.Context(), userID, sessionID, objectName)
	})
}

func (h *WizardHandler) Advance(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx, userID, sessionID string) (services.WizardResult, error) {
		return h.wizardService.Advance(c.Context(), userID, sessionID)
	})
}

func (h *WizardHandler) GoBack(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx, userID, sessionID string) (services.WizardResult, error) {
		return h.wizardService.GoBack(c.Context(), userID, sessionID)
	})
}

func (h *WizardHandler) Submit(c fiber.Ctx) error {
	return h.run(c, func(c fiber.Ctx, userID, sessionID string) (services.WizardResult, error) {
		return h.wizardService.Submit(c.Context(), userID, sessionID)
	})
}
