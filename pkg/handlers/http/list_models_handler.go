package http

import (
	"github.com/NeuralTrust/RealtimeGateway/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
)

type listModelsHandler struct {
	catalog *ModelCatalog
}

func NewListModelsHandler(catalog *ModelCatalog) Handler {
	return &listModelsHandler{catalog: catalog}
}

// Handle @Summary List generation models
// @Description Lists the models sessions and the generation endpoints accept
// @Tags Generation
// @Produce json
// @Success 200 {object} response.ListOutput[response.ModelOutput] "Models"
// @Router /v1/models [get]
func (h *listModelsHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(response.NewListOutput(h.catalog.Models()))
}
