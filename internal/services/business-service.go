package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/glowdesk/business_service/internal/domain"
	"github.com/glowdesk/business_service/internal/dto"
	"github.com/glowdesk/business_service/internal/helper"
	"github.com/glowdesk/business_service/internal/interfaces"
	"github.com/glowdesk/business_service/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type BusinessService interface {
	// Auth
	Signup(input dto.SignupRequest) (*domain.Business, error)
	Signin(input dto.SigninRequest) (*domain.Business, error)
	Logout(businessID uint) error
	ForgotPassword(email string) error
	ResetPassword(input dto.ResetPasswordRequest) error
	SendVerificationEmail(businessID uint) error
	VerifyEmailByLink(businessID uint, verificationToken string) error

	// Profile
	GetBusinessDetail(businessID uint) (*domain.Business, error)
	UpdateBusinessDetail(ctx context.Context, businessID uint, input dto.UpdateBusinessDetailRequest, logo []byte, logoFilename string) (*domain.Business, error)
	UploadLogo(ctx context.Context, businessID uint, filename string, data []byte) (*domain.Business, error)
	SetThemeColor(businessID uint, color string) error

	// Keywords
	AddKeywords(businessID uint, keywords []dto.KeywordInput) ([]domain.Keyword, error)
	GetKeywords(businessID uint) ([]domain.Keyword, error)
	UpdateOneKeyword(businessID uint, keywordID string, name *string) (*domain.Keyword, error)
	DeleteKeyword(businessID uint, keywordID string) ([]domain.Keyword, error)
	DeleteAllKeywords(businessID uint) error

	// Chatbot
	SetupChatbot(businessID uint, input dto.SetupChatbotRequest) (*domain.Business, error)
}

type businessService struct {
	repo     repository.BusinessRepository
	producer interfaces.ProducerHandler
	uploader interfaces.Uploader
	auth     helper.Auth

	// resending a verification email un-verifies the account when true
	markUnverifiedOnResend bool
}

func NewBusinessService(
	repo repository.BusinessRepository,
	producer interfaces.ProducerHandler,
	uploader interfaces.Uploader,
	auth helper.Auth,
	markUnverifiedOnResend bool,
) BusinessService {
	return &businessService{
		repo:                   repo,
		producer:               producer,
		uploader:               uploader,
		auth:                   auth,
		markUnverifiedOnResend: markUnverifiedOnResend,
	}
}

// findByEmail maps a lookup miss to the not-registered rule failure. Store
// failures pass through so they surface as opaque server errors, never as a
// 400 with a misleading message.
func (s *businessService) findByEmail(email string) (*domain.Business, error) {
	business, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}
	return business, nil
}

func (s *businessService) findByID(id uint) (*domain.Business, error) {
	business, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}
	return business, nil
}

// AUTH

func (s *businessService) Signup(input dto.SignupRequest) (*domain.Business, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	existing, err := s.repo.FindByEmail(email)
	if err == nil && existing != nil && existing.ID != 0 {
		return nil, ErrEmailExists
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	business := &domain.Business{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         strings.TrimSpace(input.Name),
		ContactName:  strings.TrimSpace(input.ContactName),
		WebsiteURL:   strings.TrimSpace(input.WebsiteURL),
		InstagramURL: strings.TrimSpace(input.InstagramURL),
		Role:         domain.RoleBusiness,
	}

	created, err := s.repo.Create(business)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	if err := s.issueLoginToken(created); err != nil {
		return nil, err
	}

	if err := s.publishMail(dto.MailEvent{
		Kind:       dto.MailKindWelcome,
		BusinessID: created.ID,
		Email:      created.Email,
		Name:       created.Name,
	}); err != nil {
		return nil, err
	}

	return created, nil
}

func (s *businessService) Signin(input dto.SigninRequest) (*domain.Business, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	business, err := s.findByEmail(email)
	if err != nil {
		return nil, err
	}

	if err := s.auth.VerifyPassword(input.Password, business.PasswordHash); err != nil {
		return nil, ErrInvalidPassword
	}

	if !business.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}

	if err := s.issueLoginToken(business); err != nil {
		return nil, err
	}

	return business, nil
}

// issueLoginToken signs a fresh token and persists it as the single active
// session for the business.
func (s *businessService) issueLoginToken(b *domain.Business) error {
	token, err := s.auth.GenerateLoginToken(b)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.repo.SetLoginToken(b.ID, token, now); err != nil {
		return err
	}

	b.LoginToken = &token
	b.LoginTime = &now
	return nil
}

func (s *businessService) Logout(businessID uint) error {
	business, err := s.findByID(businessID)
	if err != nil {
		return err
	}

	return s.repo.ClearLoginToken(business.ID)
}

// ForgotPassword persists a reset token and delivers it over the mail channel.
// The token is never echoed in the HTTP response.
func (s *businessService) ForgotPassword(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	business, err := s.findByEmail(email)
	if err != nil {
		return err
	}

	token, err := s.auth.GenerateLoginToken(business)
	if err != nil {
		return err
	}

	if err := s.repo.SetResetToken(business.ID, token); err != nil {
		return err
	}

	return s.publishMail(dto.MailEvent{
		Kind:       dto.MailKindResetPassword,
		BusinessID: business.ID,
		Email:      business.Email,
		Name:       business.Name,
		Token:      token,
	})
}

func (s *businessService) ResetPassword(input dto.ResetPasswordRequest) error {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	business, err := s.findByEmail(email)
	if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}

	// one statement: the stored token must match exactly, and a successful
	// reset clears it, so the same token can never be replayed
	matched, err := s.repo.ConsumeResetToken(business.ID, input.Token, string(hashedPassword))
	if err != nil {
		return err
	}
	if !matched {
		return ErrInvalidToken
	}

	return nil
}

func (s *businessService) SendVerificationEmail(businessID uint) error {
	business, err := s.findByID(businessID)
	if err != nil {
		return err
	}

	token, err := s.auth.GenerateVerificationToken(business.ID, business.Email)
	if err != nil {
		return err
	}

	if err := s.publishMail(dto.MailEvent{
		Kind:       dto.MailKindVerifyEmail,
		BusinessID: business.ID,
		Email:      business.Email,
		Name:       business.Name,
		Token:      token,
	}); err != nil {
		return err
	}

	if s.markUnverifiedOnResend {
		return s.repo.SetEmailVerified(business.ID, false)
	}
	return nil
}

func (s *businessService) VerifyEmailByLink(businessID uint, verificationToken string) error {
	claims, err := s.auth.VerifyToken(verificationToken)
	if err != nil {
		return ErrInvalidToken
	}
	if claims.BusinessID != businessID {
		return ErrInvalidToken
	}

	business, err := s.findByID(businessID)
	if err != nil {
		return err
	}

	return s.repo.SetEmailVerified(business.ID, true)
}

// PROFILE

func (s *businessService) GetBusinessDetail(businessID uint) (*domain.Business, error) {
	return s.findByID(businessID)
}

func (s *businessService) UpdateBusinessDetail(
	ctx context.Context,
	businessID uint,
	input dto.UpdateBusinessDetailRequest,
	logo []byte,
	logoFilename string,
) (*domain.Business, error) {
	business, err := s.findByID(businessID)
	if err != nil {
		return nil, err
	}

	if len(logo) > 0 {
		if err := s.replaceLogo(ctx, business, logoFilename, logo); err != nil {
			return nil, err
		}
	}

	fields := map[string]interface{}{}
	if input.Name != nil {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.ContactName != nil {
		fields["contact_name"] = strings.TrimSpace(*input.ContactName)
	}
	if input.WebsiteURL != nil {
		fields["website_url"] = strings.TrimSpace(*input.WebsiteURL)
	}
	if input.InstagramURL != nil {
		fields["instagram_url"] = strings.TrimSpace(*input.InstagramURL)
	}
	if input.ThemeColor != nil {
		fields["theme_color"] = *input.ThemeColor
	}

	if err := s.repo.UpdateDetails(business.ID, fields); err != nil {
		return nil, err
	}

	return s.findByID(business.ID)
}

func (s *businessService) UploadLogo(ctx context.Context, businessID uint, filename string, data []byte) (*domain.Business, error) {
	business, err := s.findByID(businessID)
	if err != nil {
		return nil, err
	}

	if err := s.replaceLogo(ctx, business, filename, data); err != nil {
		return nil, err
	}

	return s.findByID(business.ID)
}

// replaceLogo uploads the new asset and then best-effort deletes the one it
// replaces; a failed delete of the old file never fails the request.
func (s *businessService) replaceLogo(ctx context.Context, business *domain.Business, filename string, data []byte) error {
	publicID := uuid.NewString()
	url, storedID, err := s.uploader.UploadBytes(ctx, "business-logos", publicID, data)
	if err != nil {
		return err
	}

	if business.LogoPublicID != "" {
		_ = s.uploader.Delete(ctx, business.LogoPublicID)
	}

	return s.repo.SetLogo(business.ID, url, storedID)
}

func (s *businessService) SetThemeColor(businessID uint, color string) error {
	business, err := s.findByID(businessID)
	if err != nil {
		return err
	}

	return s.repo.SetThemeColor(business.ID, color)
}

// KEYWORDS

func (s *businessService) AddKeywords(businessID uint, keywords []dto.KeywordInput) ([]domain.Keyword, error) {
	if keywords == nil {
		return nil, ErrInvalidInput
	}
	for _, kw := range keywords {
		if strings.TrimSpace(kw.Name) == "" {
			return nil, ErrInvalidInput
		}
	}

	business, err := s.findByID(businessID)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.Keyword, 0, len(keywords))
	for _, kw := range keywords {
		rows = append(rows, domain.Keyword{
			ID:         uuid.NewString(),
			BusinessID: business.ID,
			Name:       kw.Name,
		})
	}

	if err := s.repo.AddKeywords(business.ID, rows); err != nil {
		return nil, err
	}

	return s.repo.GetKeywords(business.ID)
}

func (s *businessService) GetKeywords(businessID uint) ([]domain.Keyword, error) {
	business, err := s.findByID(businessID)
	if err != nil {
		return nil, err
	}

	return s.repo.GetKeywords(business.ID)
}

func (s *businessService) UpdateOneKeyword(businessID uint, keywordID string, name *string) (*domain.Keyword, error) {
	business, err := s.findByID(businessID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		matched, err := s.repo.UpdateKeywordName(business.ID, keywordID, strings.TrimSpace(*name))
		if err != nil {
			return nil, err
		}
		if !matched {
			return nil, ErrKeywordNotFound
		}
	}

	kws, err := s.repo.GetKeywords(business.ID)
	if err != nil {
		return nil, err
	}
	for i := range kws {
		if kws[i].ID == keywordID {
			return &kws[i], nil
		}
	}
	return nil, ErrKeywordNotFound
}

func (s *businessService) DeleteKeyword(businessID uint, keywordID string) ([]domain.Keyword, error) {
	business, err := s.findByID(businessID)
	if err != nil {
		return nil, err
	}

	matched, err := s.repo.DeleteKeyword(business.ID, keywordID)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ErrKeywordNotFound
	}

	return s.repo.GetKeywords(business.ID)
}

func (s *businessService) DeleteAllKeywords(businessID uint) error {
	business, err := s.findByID(businessID)
	if err != nil {
		return err
	}

	return s.repo.DeleteAllKeywords(business.ID)
}

// CHATBOT

// SetupChatbot is the one upsert in the workflow: saving a config for an
// unknown business id creates the row instead of failing.
func (s *businessService) SetupChatbot(businessID uint, input dto.SetupChatbotRequest) (*domain.Business, error) {
	questions := make([]domain.ChatbotQuestion, 0, len(input.Questions))
	for _, q := range input.Questions {
		questions = append(questions, domain.ChatbotQuestion{Name: q.Name})
	}
	services := make([]domain.ChatbotService, 0, len(input.Services))
	for _, sv := range input.Services {
		services = append(services, domain.ChatbotService{Name: sv.Name})
	}
	kws := make([]domain.Keyword, 0, len(input.Keywords))
	for _, kw := range input.Keywords {
		kws = append(kws, domain.Keyword{
			ID:         uuid.NewString(),
			BusinessID: businessID,
			Name:       kw.Name,
		})
	}

	business, err := s.repo.UpsertChatbotConfig(businessID, questions, kws, services)
	if err != nil {
		return nil, err
	}

	// freshly created rows have no email yet; nothing to notify
	if business.Email != "" {
		if err := s.publishMail(dto.MailEvent{
			Kind:       dto.MailKindEmbedCode,
			BusinessID: business.ID,
			Email:      business.Email,
			Name:       business.Name,
		}); err != nil {
			return nil, err
		}
	}

	return business, nil
}

func (s *businessService) publishMail(event dto.MailEvent) error {
	if s.producer == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.producer.PublishMessage([]byte(event.Kind), payload)
}
