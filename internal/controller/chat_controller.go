package controller

import (
	"product-chat-be/internal/dto"
	"product-chat-be/internal/pkg/serverutils"
	"product-chat-be/internal/service"
	"product-chat-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	GetAllSessions(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	PostMessage(ctx *fiber.Ctx) error
	CompleteRAG(ctx *fiber.Ctx) error
	RenameSession(ctx *fiber.Ctx) error
	SummarizeSessionName(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	ProductReasoning(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/v1/chat")
	h.Post("sessions", c.CreateSession)
	h.Get("sessions", c.GetAllSessions)
	h.Put("sessions/:sessionId", c.RenameSession)
	h.Delete("sessions/:sessionId", c.DeleteSession)
	h.Post("sessions/:sessionId/summarize-name", c.SummarizeSessionName)
	h.Post("sessions/:sessionId/products/:productId/reasoning", c.ProductReasoning)
	h.Get("messages/:sessionId", c.GetMessages)
	h.Post("messages/:sessionId", c.PostMessage)
	h.Post("rag/:sessionId", c.CompleteRAG)
}

// parseBody decodes the JSON body into req. An empty body leaves req as is.
func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if len(ctx.Body()) == 0 {
		return nil
	}
	if err := ctx.BodyParser(req); err != nil {
		return apperror.Validation("invalid request body: %v", err)
	}
	return nil
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.chatService.CreateSession(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *chatController) GetAllSessions(ctx *fiber.Ctx) error {
	res, err := c.chatService.GetAllSessions(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all sessions", res))
}

func (c *chatController) GetMessages(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("sessionId")
	if err := serverutils.ValidateRequest(dto.SessionRequest{SessionId: sessionId}); err != nil {
		return err
	}

	res, err := c.chatService.GetMessages(ctx.UserContext(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get messages", res))
}

func (c *chatController) PostMessage(ctx *fiber.Ctx) error {
	var req dto.PostMessageRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	req.SessionId = ctx.Params("sessionId")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.PostMessage(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *chatController) CompleteRAG(ctx *fiber.Ctx) error {
	var req dto.RagRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	req.SessionId = ctx.Params("sessionId")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.CompleteRAG(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success complete chat", res))
}

func (c *chatController) RenameSession(ctx *fiber.Ctx) error {
	var req dto.RenameSessionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	req.SessionId = ctx.Params("sessionId")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.chatService.RenameSession(ctx.UserContext(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success rename session", nil))
}

func (c *chatController) SummarizeSessionName(ctx *fiber.Ctx) error {
	var req dto.SummarizeNameRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	req.SessionId = ctx.Params("sessionId")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SummarizeSessionName(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success summarize session name", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("sessionId")
	if err := serverutils.ValidateRequest(dto.SessionRequest{SessionId: sessionId}); err != nil {
		return err
	}

	if err := c.chatService.DeleteSession(ctx.UserContext(), sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func (c *chatController) ProductReasoning(ctx *fiber.Ctx) error {
	req := dto.ProductReasoningRequest{
		SessionId: ctx.Params("sessionId"),
		ProductId: ctx.Params("productId"),
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.ProductReasoning(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success product reasoning", res))
}
