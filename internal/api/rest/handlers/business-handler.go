package handlers

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/glowdesk/business_service/internal/api/rest/middleware"
	"github.com/glowdesk/business_service/internal/dto"
	"github.com/glowdesk/business_service/internal/helper"
	"github.com/glowdesk/business_service/internal/helper/utils"
	"github.com/glowdesk/business_service/internal/services"
	pkgutils "github.com/glowdesk/business_service/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

const maxLogoSize = 5 * 1024 * 1024 // 5MB

type BusinessHandler struct {
	svc  services.BusinessService
	auth helper.Auth
}

func NewBusinessHandler(svc services.BusinessService, auth helper.Auth) *BusinessHandler {
	return &BusinessHandler{svc: svc, auth: auth}
}

func (h *BusinessHandler) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	business := api.Group("/business")

	// Auth
	business.Post("/signup", h.Signup)
	business.Post("/signin", h.Signin)
	business.Post("/forgot-password", h.ForgotPassword)
	business.Post("/reset-password", h.ResetPassword)
	business.Post("/verify-email", h.VerifyEmailByLink)

	business.Use(middleware.AuthMiddleware(h.auth))

	business.Post("/logout", h.Logout)
	business.Post("/send-verification-email", h.SendVerificationEmail)

	// Profile
	business.Get("/:businessID", h.GetBusinessDetail)
	business.Put("/:businessID", h.UpdateBusinessDetail)
	business.Post("/:businessID/logo", h.UploadLogo)
	business.Patch("/:businessID/theme-color", h.SetThemeColor)

	// Keywords
	business.Post("/:businessID/keywords", h.AddKeywords)
	business.Get("/:businessID/keywords", h.GetKeywords)
	business.Patch("/:businessID/keywords", h.UpdateOneKeyword)
	business.Delete("/:businessID/keywords", h.DeleteAllKeywords)
	business.Delete("/:businessID/keywords/:keywordID", h.DeleteKeyword)

	// Chatbot
	business.Post("/:businessID/chatbot", h.SetupChatbot)
}

func (h *BusinessHandler) Signup(ctx *fiber.Ctx) error {
	var requestBody dto.SignupRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if errs := helper.ValidateStruct(requestBody); len(errs) > 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, errs[0].Message)
	}

	business, err := h.svc.Signup(requestBody)
	if err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Register successfully", business)
}

func (h *BusinessHandler) Signin(ctx *fiber.Ctx) error {
	var requestBody dto.SigninRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "email and password are required")
	}
	if errs := helper.ValidateStruct(requestBody); len(errs) > 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, errs[0].Message)
	}

	business, err := h.svc.Signin(requestBody)
	if err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Business Login Successfully", business)
}

func (h *BusinessHandler) Logout(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentBusiness(ctx)
	if err != nil {
		return utils.ResponseFail(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.svc.Logout(claims.BusinessID); err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Logout successfully", nil)
}

func (h *BusinessHandler) ForgotPassword(ctx *fiber.Ctx) error {
	var requestBody dto.ForgotPasswordRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "Please provide valid email id")
	}
	if errs := helper.ValidateStruct(requestBody); len(errs) > 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, errs[0].Message)
	}

	if err := h.svc.ForgotPassword(requestBody.Email); err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Reset password email has been sent", nil)
}

func (h *BusinessHandler) ResetPassword(ctx *fiber.Ctx) error {
	var requestBody dto.ResetPasswordRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "Please provide valid input")
	}
	if errs := helper.ValidateStruct(requestBody); len(errs) > 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, errs[0].Message)
	}

	if err := h.svc.ResetPassword(requestBody); err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Password has been reset successfully", nil)
}

func (h *BusinessHandler) SendVerificationEmail(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentBusiness(ctx)
	if err != nil {
		return utils.ResponseFail(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.svc.SendVerificationEmail(claims.BusinessID); err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Verification email has been sent successfully", nil)
}

func (h *BusinessHandler) VerifyEmailByLink(ctx *fiber.Ctx) error {
	var requestBody dto.VerifyEmailRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "Please provide valid input")
	}
	if errs := helper.ValidateStruct(requestBody); len(errs) > 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, errs[0].Message)
	}

	if err := h.svc.VerifyEmailByLink(requestBody.BusinessID, requestBody.VerificationToken); err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Email has been verified successfully", nil)
}

func (h *BusinessHandler) GetBusinessDetail(ctx *fiber.Ctx) error {
	businessID, err := ctx.ParamsInt("businessID")
	if err != nil || businessID <= 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "invalid business id")
	}

	business, err := h.svc.GetBusinessDetail(uint(businessID))
	if err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Business details fetched successfully", business)
}

func (h *BusinessHandler) UpdateBusinessDetail(ctx *fiber.Ctx) error {
	businessID, err := ctx.ParamsInt("businessID")
	if err != nil || businessID <= 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "invalid business id")
	}

	var requestBody dto.UpdateBusinessDetailRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	// optional logo in the same multipart request
	var logoBytes []byte
	var logoName string
	if file, ferr := ctx.FormFile("logo"); ferr == nil && file != nil {
		logoBytes, logoName, err = readLogoFile(file)
		if err != nil {
			return utils.ResponseFail(ctx, fiber.StatusBadRequest, err.Error())
		}
	}

	business, err := h.svc.UpdateBusinessDetail(ctx.Context(), uint(businessID), requestBody, logoBytes, logoName)
	if err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Business details updated successfully", business)
}

func (h *BusinessHandler) UploadLogo(ctx *fiber.Ctx) error {
	businessID, err := ctx.ParamsInt("businessID")
	if err != nil || businessID <= 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "invalid business id")
	}

	file, err := ctx.FormFile("logo")
	if err != nil {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "logo file is required")
	}

	data, name, err := readLogoFile(file)
	if err != nil {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, err.Error())
	}

	business, err := h.svc.UploadLogo(ctx.Context(), uint(businessID), name, data)
	if err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Logo has been updated successfully", business)
}

func (h *BusinessHandler) SetThemeColor(ctx *fiber.Ctx) error {
	businessID, err := ctx.ParamsInt("businessID")
	if err != nil || businessID <= 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "invalid business id")
	}

	var requestBody dto.SetThemeColorRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if errs := helper.ValidateStruct(requestBody); len(errs) > 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, errs[0].Message)
	}

	if err := h.svc.SetThemeColor(uint(businessID), requestBody.ThemeColor); err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Theme color has been updated successfully", fiber.Map{
		"theme_color": requestBody.ThemeColor,
	})
}

func (h *BusinessHandler) AddKeywords(ctx *fiber.Ctx) error {
	businessID, err := ctx.ParamsInt("businessID")
	if err != nil || businessID <= 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "invalid business id")
	}

	var requestBody dto.AddKeywordsRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "Keywords must be an array")
	}

	kws, err := h.svc.AddKeywords(uint(businessID), requestBody.Keywords)
	if err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Business keywords updated successfully", fiber.Map{
		"keywords": kws,
	})
}

func (h *BusinessHandler) GetKeywords(ctx *fiber.Ctx) error {
	businessID, err := ctx.ParamsInt("businessID")
	if err != nil || businessID <= 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "invalid business id")
	}

	kws, err := h.svc.GetKeywords(uint(businessID))
	if err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Business keywords fetched successfully", kws)
}

func (h *BusinessHandler) UpdateOneKeyword(ctx *fiber.Ctx) error {
	businessID, err := ctx.ParamsInt("businessID")
	if err != nil || businessID <= 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "invalid business id")
	}

	var requestBody dto.UpdateKeywordRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if errs := helper.ValidateStruct(requestBody); len(errs) > 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, errs[0].Message)
	}

	kw, err := h.svc.UpdateOneKeyword(uint(businessID), requestBody.Keyword.ID, requestBody.Keyword.Name)
	if err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Keyword updated successfully", kw)
}

func (h *BusinessHandler) DeleteKeyword(ctx *fiber.Ctx) error {
	businessID, err := ctx.ParamsInt("businessID")
	if err != nil || businessID <= 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "invalid business id")
	}
	keywordID := strings.TrimSpace(ctx.Params("keywordID"))
	if keywordID == "" {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "invalid keyword id")
	}

	kws, err := h.svc.DeleteKeyword(uint(businessID), keywordID)
	if err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Keyword deleted successfully", kws)
}

func (h *BusinessHandler) DeleteAllKeywords(ctx *fiber.Ctx) error {
	businessID, err := ctx.ParamsInt("businessID")
	if err != nil || businessID <= 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "invalid business id")
	}

	if err := h.svc.DeleteAllKeywords(uint(businessID)); err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Keywords deleted successfully", []interface{}{})
}

func (h *BusinessHandler) SetupChatbot(ctx *fiber.Ctx) error {
	businessID, err := ctx.ParamsInt("businessID")
	if err != nil || businessID <= 0 {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "invalid business id")
	}

	var requestBody dto.SetupChatbotRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	business, err := h.svc.SetupChatbot(uint(businessID), requestBody)
	if err != nil {
		return h.failOrServerError(ctx, err)
	}
	return utils.ResponseOK(ctx, "Chatbot config saved successfully", business)
}

func (h *BusinessHandler) failOrServerError(ctx *fiber.Ctx, err error) error {
	if services.IsRuleError(err) {
		return utils.ResponseFail(ctx, fiber.StatusBadRequest, err.Error())
	}
	return utils.ResponseServerError(ctx, err)
}

func readLogoFile(file *multipart.FileHeader) ([]byte, string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
	if !allowed[ext] {
		return nil, "", errInvalidLogoType
	}
	if file.Size > maxLogoSize {
		return nil, "", errLogoTooLarge
	}

	f, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := pkgutils.ReadAllLimit(f, maxLogoSize)
	if err != nil {
		return nil, "", err
	}
	return data, file.Filename, nil
}
