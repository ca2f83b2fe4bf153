package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"declaration-service/internal/services"
	"declaration-service/shared/utils"

	"github.com/gofiber/fiber/v3"
)

type CustomerHandler struct {
	customerService *services.CustomerService
}

func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func (h *CustomerHandler) RegisterRoutes(app *fiber.App) {
	protectedGr := app.Group(protectedPrefix)

	protectedGr.Get("/customers", h.SearchCustomers)
	protectedGr.Get("/customers/:id", h.GetCustomerByID)
}

func (h *CustomerHandler) SearchCustomers(c fiber.Ctx) error {
	customers, err := h.customerService.Search(c.Context(), c.Query("search"))
	if err != nil {
		slog.Error("failed to search customers", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(utils.CreateErrorResponse(utils.CodeInternal, "Failed to load customers"))
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(customers))
}

func (h *CustomerHandler) GetCustomerByID(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return badRequest(c, "Invalid customer id")
	}

	customer, err := h.customerService.GetCustomer(c.Context(), id)
	if err != nil {
		return writeLookupError(c, err, "Customer")
	}
	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(customer))
}
