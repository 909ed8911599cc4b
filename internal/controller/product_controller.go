package controller

import (
	"product-chat-be/internal/dto"
	"product-chat-be/internal/pkg/serverutils"
	"product-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IProductController interface {
	RegisterRoutes(r fiber.Router)
	Import(ctx *fiber.Ctx) error
	RequeuePending(ctx *fiber.Ctx) error
}

type productController struct {
	productService service.IProductService
}

func NewProductController(productService service.IProductService) IProductController {
	return &productController{
		productService: productService,
	}
}

func (c *productController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/v1/products")
	h.Post("import", c.Import)
	h.Post("vectorize", c.RequeuePending)
}

func (c *productController) Import(ctx *fiber.Ctx) error {
	var req dto.ImportProductsRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.productService.Import(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Products queued for vectorization", res))
}

func (c *productController) RequeuePending(ctx *fiber.Ctx) error {
	var req dto.RequeuePendingRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.productService.RequeuePending(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Pending products queued for vectorization", res))
}
