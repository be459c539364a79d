package handlers

import (
	"strings"

	"github.com/glowdesk/business_service/internal/api/rest/middleware"
	"github.com/glowdesk/business_service/internal/dto"
	"github.com/glowdesk/business_service/internal/helper"
	"github.com/glowdesk/business_service/internal/helper/utils"
	"github.com/glowdesk/business_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SubscriptionHandler struct {
	svc  services.SubscriptionService
	auth helper.Auth
}

func NewSubscriptionHandler(svc services.SubscriptionService, auth helper.Auth) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc, auth: auth}
}

func (h *SubscriptionHandler) SetupRoutes(app *fiber.App) {
	sub := app.Group("/api/subscription", middleware.AuthMiddleware(h.auth))

	sub.Post("/create", h.Create)
	sub.Post("/cancel", h.Cancel)
	sub.Get("/status", h.Status)
	sub.Get("/cards", h.Cards)
	sub.Delete("/cards/:cardID", h.RemoveCard)
	sub.Get("/plans", h.Plans)
}

func (h *SubscriptionHandler) Create(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentBusiness(ctx)
	if err != nil {
		return utils.ResponseFail(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	var requestBody dto.CreateSubscriptionRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "paymentMethodId and priceId are required")
	}
	if errs := helper.ValidateStruct(requestBody); len(errs) > 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, errs[0].Message)
	}

	sub, err := h.svc.CreateSubscription(ctx.Context(), claims.BusinessID, requestBody.PaymentMethodID, requestBody.PriceID)
	if err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Subscription created successfully", sub)
}

func (h *SubscriptionHandler) Cancel(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentBusiness(ctx)
	if err != nil {
		return utils.ResponseFail(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	sub, err := h.svc.CancelSubscription(ctx.Context(), claims.BusinessID)
	if err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Subscription canceled successfully", sub)
}

func (h *SubscriptionHandler) Status(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentBusiness(ctx)
	if err != nil {
		return utils.ResponseFail(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	sub, err := h.svc.GetActiveSubscription(claims.BusinessID)
	if err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Subscription fetched successfully", sub)
}

func (h *SubscriptionHandler) Cards(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentBusiness(ctx)
	if err != nil {
		return utils.ResponseFail(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	cards, err := h.svc.ListSavedCards(ctx.Context(), claims.BusinessID)
	if err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Saved cards fetched successfully", cards)
}

func (h *SubscriptionHandler) RemoveCard(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentBusiness(ctx)
	if err != nil {
		return utils.ResponseFail(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	cardID := strings.TrimSpace(ctx.Params("cardID"))
	if cardID == "" {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "invalid card id")
	}

	if err := h.svc.RemoveSavedCard(ctx.Context(), claims.BusinessID, cardID); err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Card removed successfully", nil)
}

func (h *SubscriptionHandler) Plans(ctx *fiber.Ctx) error {
	plans, err := h.svc.ListPlans(ctx.Context())
	if err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Subscription plans fetched successfully", plans)
}

func (h *SubscriptionHandler) failOrServerError(ctx *fiber.Ctx, err error) error {
	if services.IsRuleError(err) {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	return utils.ResponseServerError(ctx, err)
}
