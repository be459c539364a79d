package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glowdesk/business_service/internal/domain"
	"github.com/glowdesk/business_service/internal/dto"
	"github.com/glowdesk/business_service/internal/helper"
	"github.com/glowdesk/business_service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------- test fakes --------

type fakeBusinessRepo struct {
	businesses map[uint]*domain.Business
	keywords   map[uint][]domain.Keyword
	nextID     uint
}

func newFakeBusinessRepo() *fakeBusinessRepo {
	return &fakeBusinessRepo{
		businesses: map[uint]*domain.Business{},
		keywords:   map[uint][]domain.Keyword{},
	}
}

func (f *fakeBusinessRepo) Create(b *domain.Business) (*domain.Business, error) {
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	f.businesses[b.ID] = b
	return b, nil
}

func (f *fakeBusinessRepo) FindByEmail(email string) (*domain.Business, error) {
	for _, b := range f.businesses {
		if b.Email == email {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBusinessRepo) FindByID(id uint) (*domain.Business, error) {
	b, ok := f.businesses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	cp.Keywords = append([]domain.Keyword(nil), f.keywords[id]...)
	return &cp, nil
}

func (f *fakeBusinessRepo) SetLoginToken(id uint, token string, at time.Time) error {
	b, ok := f.businesses[id]
	if !ok {
		return errors.New("failed to update business")
	}
	b.LoginToken = &token
	b.LoginTime = &at
	return nil
}

func (f *fakeBusinessRepo) ClearLoginToken(id uint) error {
	b, ok := f.businesses[id]
	if !ok {
		return errors.New("failed to update business")
	}
	b.LoginToken = nil
	return nil
}

func (f *fakeBusinessRepo) SetResetToken(id uint, token string) error {
	b, ok := f.businesses[id]
	if !ok {
		return errors.New("failed to update business")
	}
	b.ResetPasswordToken = &token
	return nil
}

func (f *fakeBusinessRepo) ConsumeResetToken(id uint, token string, newHash string) (bool, error) {
	b, ok := f.businesses[id]
	if !ok {
		return false, nil
	}
	if b.ResetPasswordToken == nil || *b.ResetPasswordToken != token {
		return false, nil
	}
	b.ResetPasswordToken = nil
	b.PasswordHash = newHash
	return true, nil
}

func (f *fakeBusinessRepo) SetEmailVerified(id uint, verified bool) error {
	b, ok := f.businesses[id]
	if !ok {
		return errors.New("failed to update business")
	}
	b.IsEmailVerified = verified
	return nil
}

func (f *fakeBusinessRepo) SetThemeColor(id uint, color string) error {
	b, ok := f.businesses[id]
	if !ok {
		return errors.New("failed to update business")
	}
	b.ThemeColor = color
	return nil
}

func (f *fakeBusinessRepo) SetLogo(id uint, url string, publicID string) error {
	b, ok := f.businesses[id]
	if !ok {
		return errors.New("failed to update business")
	}
	b.LogoURL = url
	b.LogoPublicID = publicID
	return nil
}

func (f *fakeBusinessRepo) UpdateDetails(id uint, fields map[string]interface{}) error {
	b, ok := f.businesses[id]
	if !ok {
		return errors.New("failed to update business")
	}
	for col, v := range fields {
		switch col {
		case "name":
			b.Name = v.(string)
		case "contact_name":
			b.ContactName = v.(string)
		case "website_url":
			b.WebsiteURL = v.(string)
		case "instagram_url":
			b.InstagramURL = v.(string)
		case "theme_color":
			b.ThemeColor = v.(string)
		case "payment_customer_id":
			b.PaymentCustomerID = v.(string)
		default:
			return fmt.Errorf("unexpected column %q", col)
		}
	}
	return nil
}

func (f *fakeBusinessRepo) AddKeywords(businessID uint, kws []domain.Keyword) error {
	f.keywords[businessID] = append(f.keywords[businessID], kws...)
	return nil
}

func (f *fakeBusinessRepo) GetKeywords(businessID uint) ([]domain.Keyword, error) {
	return append([]domain.Keyword(nil), f.keywords[businessID]...), nil
}

func (f *fakeBusinessRepo) UpdateKeywordName(businessID uint, keywordID string, name string) (bool, error) {
	kws := f.keywords[businessID]
	for i := range kws {
		if kws[i].ID == keywordID {
			kws[i].Name = name
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBusinessRepo) DeleteKeyword(businessID uint, keywordID string) (bool, error) {
	kws := f.keywords[businessID]
	for i := range kws {
		if kws[i].ID == keywordID {
			f.keywords[businessID] = append(kws[:i], kws[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBusinessRepo) DeleteAllKeywords(businessID uint) error {
	f.keywords[businessID] = nil
	return nil
}

func (f *fakeBusinessRepo) UpsertChatbotConfig(
	businessID uint,
	questions []domain.ChatbotQuestion,
	kws []domain.Keyword,
	services []domain.ChatbotService,
) (*domain.Business, error) {
	b, ok := f.businesses[businessID]
	if !ok {
		b = &domain.Business{ID: businessID}
		f.businesses[businessID] = b
		if businessID > f.nextID {
			f.nextID = businessID
		}
	}
	b.Questions = questions
	b.Services = services
	f.keywords[businessID] = append([]domain.Keyword(nil), kws...)
	return f.FindByID(businessID)
}

type fakeProducer struct {
	events []dto.MailEvent
	err    error
}

func (f *fakeProducer) PublishMessage(key, value []byte) error {
	if f.err != nil {
		return f.err
	}
	var ev dto.MailEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		return err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeProducer) lastEvent() dto.MailEvent {
	if len(f.events) == 0 {
		return dto.MailEvent{}
	}
	return f.events[len(f.events)-1]
}

type fakeUploader struct {
	uploads []string
	deletes []string
}

func (f *fakeUploader) UploadBytes(ctx context.Context, folder, filename string, b []byte) (string, string, error) {
	f.uploads = append(f.uploads, filename)
	return "https://cdn.example/" + folder + "/" + filename, filename, nil
}

func (f *fakeUploader) Delete(ctx context.Context, publicID string) error {
	f.deletes = append(f.deletes, publicID)
	return nil
}

// failingBusinessRepo simulates a store outage: every lookup errors without
// the not-found sentinel.
type failingBusinessRepo struct {
	*fakeBusinessRepo
	err error
}

func (f *failingBusinessRepo) FindByEmail(string) (*domain.Business, error) { return nil, f.err }
func (f *failingBusinessRepo) FindByID(uint) (*domain.Business, error) { return nil, f.err }

// -------- helpers --------

func newTestService() (BusinessService, *fakeBusinessRepo, *fakeProducer, *fakeUploader) {
	repo := newFakeBusinessRepo()
	producer := &fakeProducer{}
	uploader := &fakeUploader{}
	svc := NewBusinessService(repo, producer, uploader, helper.SetupAuth("test-secret"), true)
	return svc, repo, producer, uploader
}

func signup(t *testing.T, svc BusinessService, email, password, name string) *domain.Business {
	t.Helper()
	b, err := svc.Signup(dto.SignupRequest{Email: email, Password: password, Name: name})
	require.NoError(t, err)
	return b
}

// -------- auth --------

func TestSignup_DuplicateEmailCaseInsensitive(t *testing.T) {
	svc, _, producer, _ := newTestService()

	b := signup(t, svc, "A@X.com", "pw1pw1", "Alice")
	assert.Equal(t, "a@x.com", b.Email)
	assert.False(t, b.IsEmailVerified)
	require.NotNil(t, b.LoginToken)
	assert.Equal(t, dto.MailKindWelcome, producer.lastEvent().Kind)

	_, err := svc.Signup(dto.SignupRequest{Email: "a@X.COM", Password: "pw2pw2", Name: "Bob"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestSignin_Lifecycle(t *testing.T) {
	svc, repo, _, _ := newTestService()
	b := signup(t, svc, "a@x.com", "pw1pw1", "Alice")

	// unverified accounts can exist but cannot sign in
	_, err := svc.Signin(dto.SigninRequest{Email: "a@x.com", Password: "pw1pw1"})
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	// credentials are checked before the verified flag
	_, err = svc.Signin(dto.SigninRequest{Email: "a@x.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = svc.Signin(dto.SigninRequest{Email: "missing@x.com", Password: "pw1pw1"})
	assert.ErrorIs(t, err, ErrNotRegistered)

	// simulate clicking the verification link
	require.NoError(t, repo.SetEmailVerified(b.ID, true))

	got, err := svc.Signin(dto.SigninRequest{Email: "a@x.com", Password: "pw1pw1"})
	require.NoError(t, err)
	require.NotNil(t, got.LoginToken)

	require.NoError(t, svc.Logout(b.ID))
	assert.Nil(t, repo.businesses[b.ID].LoginToken)
}

func TestLookupStoreFailure_NotReportedAsRuleError(t *testing.T) {
	repo := &failingBusinessRepo{
		fakeBusinessRepo: newFakeBusinessRepo(),
		err:              errors.New("connection refused"),
	}
	svc := NewBusinessService(repo, &fakeProducer{}, &fakeUploader{}, helper.SetupAuth("test-secret"), true)

	// an unreachable store must not read as "Email not registered"
	_, err := svc.Signin(dto.SigninRequest{Email: "a@x.com", Password: "pw1pw1"})
	require.Error(t, err)
	assert.False(t, IsRuleError(err))
	assert.NotErrorIs(t, err, ErrNotRegistered)

	_, err = svc.Signup(dto.SignupRequest{Email: "a@x.com", Password: "pw1pw1", Name: "Alice"})
	require.Error(t, err)
	assert.False(t, IsRuleError(err))

	assert.False(t, IsRuleError(svc.ForgotPassword("a@x.com")))
	assert.False(t, IsRuleError(svc.Logout(1)))

	_, err = svc.GetKeywords(1)
	require.Error(t, err)
	assert.False(t, IsRuleError(err))
}

func TestLogout_NotRegistered(t *testing.T) {
	svc, _, _, _ := newTestService()
	assert.ErrorIs(t, svc.Logout(99), ErrNotRegistered)
}

func TestResetPassword_SingleUse(t *testing.T) {
	svc, repo, producer, _ := newTestService()
	b := signup(t, svc, "a@x.com", "pw1pw1", "Alice")

	require.NoError(t, svc.ForgotPassword("A@x.com"))
	require.NotNil(t, repo.businesses[b.ID].ResetPasswordToken)
	token := *repo.businesses[b.ID].ResetPasswordToken

	// the token travels only over the mail channel
	assert.Equal(t, dto.MailKindResetPassword, producer.lastEvent().Kind)
	assert.Equal(t, token, producer.lastEvent().Token)

	err := svc.ResetPassword(dto.ResetPasswordRequest{
		Email: "a@x.com", Token: token + "x", NewPassword: "newpw1",
	})
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, svc.ResetPassword(dto.ResetPasswordRequest{
		Email: "a@x.com", Token: token, NewPassword: "newpw1",
	}))
	assert.Nil(t, repo.businesses[b.ID].ResetPasswordToken)

	// replay with the consumed token fails
	err = svc.ResetPassword(dto.ResetPasswordRequest{
		Email: "a@x.com", Token: token, NewPassword: "again1",
	})
	assert.ErrorIs(t, err, ErrInvalidToken)

	// and the new password actually took effect
	require.NoError(t, repo.SetEmailVerified(b.ID, true))
	_, err = svc.Signin(dto.SigninRequest{Email: "a@x.com", Password: "newpw1"})
	assert.NoError(t, err)
}

func TestForgotPassword_NotRegistered(t *testing.T) {
	svc, _, _, _ := newTestService()
	assert.ErrorIs(t, svc.ForgotPassword("missing@x.com"), ErrNotRegistered)
}

// -------- email verification --------

func TestSendVerificationEmail_MarksUnverified(t *testing.T) {
	svc, repo, producer, _ := newTestService()
	b := signup(t, svc, "a@x.com", "pw1pw1", "Alice")
	require.NoError(t, repo.SetEmailVerified(b.ID, true))

	require.NoError(t, svc.SendVerificationEmail(b.ID))

	// resending un-verifies the account, see config.MarkUnverifiedOnResend
	assert.False(t, repo.businesses[b.ID].IsEmailVerified)
	ev := producer.lastEvent()
	assert.Equal(t, dto.MailKindVerifyEmail, ev.Kind)
	assert.NotEmpty(t, ev.Token)
}

func TestSendVerificationEmail_KeepVerifiedWhenConfigured(t *testing.T) {
	repo := newFakeBusinessRepo()
	producer := &fakeProducer{}
	svc := NewBusinessService(repo, producer, &fakeUploader{}, helper.SetupAuth("test-secret"), false)

	b := signup(t, svc, "a@x.com", "pw1pw1", "Alice")
	require.NoError(t, repo.SetEmailVerified(b.ID, true))

	require.NoError(t, svc.SendVerificationEmail(b.ID))
	assert.True(t, repo.businesses[b.ID].IsEmailVerified)
}

func TestVerifyEmailByLink(t *testing.T) {
	svc, repo, producer, _ := newTestService()
	b := signup(t, svc, "a@x.com", "pw1pw1", "Alice")
	require.NoError(t, svc.SendVerificationEmail(b.ID))
	token := producer.lastEvent().Token

	// a validly signed token for another subject must not verify this account
	err := svc.VerifyEmailByLink(b.ID+1, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	err = svc.VerifyEmailByLink(b.ID, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, svc.VerifyEmailByLink(b.ID, token))
	assert.True(t, repo.businesses[b.ID].IsEmailVerified)
}

// -------- profile --------

func TestUpdateBusinessDetail_AllowList(t *testing.T) {
	svc, repo, _, _ := newTestService()
	b := signup(t, svc, "a@x.com", "pw1pw1", "Alice")
	oldHash := repo.businesses[b.ID].PasswordHash

	name := "Glow Spa"
	color := "#aabbcc"
	got, err := svc.UpdateBusinessDetail(context.Background(), b.ID, dto.UpdateBusinessDetailRequest{
		Name:       &name,
		ThemeColor: &color,
	}, nil, "")
	require.NoError(t, err)

	assert.Equal(t, "Glow Spa", got.Name)
	assert.Equal(t, "#aabbcc", got.ThemeColor)
	// untouched fields keep their values
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, oldHash, repo.businesses[b.ID].PasswordHash)
}

func TestUploadLogo_ReplacesPrior(t *testing.T) {
	svc, repo, _, uploader := newTestService()
	b := signup(t, svc, "a@x.com", "pw1pw1", "Alice")

	_, err := svc.UploadLogo(context.Background(), b.ID, "logo.png", []byte("img1"))
	require.NoError(t, err)
	first := repo.businesses[b.ID].LogoPublicID
	require.NotEmpty(t, first)
	assert.Empty(t, uploader.deletes)

	_, err = svc.UploadLogo(context.Background(), b.ID, "logo2.png", []byte("img2"))
	require.NoError(t, err)
	assert.Equal(t, []string{first}, uploader.deletes)
	assert.NotEqual(t, first, repo.businesses[b.ID].LogoPublicID)
}

func TestSetThemeColor_NotRegistered(t *testing.T) {
	svc, _, _, _ := newTestService()
	assert.ErrorIs(t, svc.SetThemeColor(99, "#fff"), ErrNotRegistered)
}

// -------- keywords --------

func TestAddKeywords_InvalidInput(t *testing.T) {
	svc, _, _, _ := newTestService()
	b := signup(t, svc, "a@x.com", "pw1pw1", "Alice")

	_, err := svc.AddKeywords(b.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddKeywords(b.ID, []dto.KeywordInput{{Name: "spa"}, {Name: "  "}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// failed adds must not mutate the account
	kws, err := svc.GetKeywords(b.ID)
	require.NoError(t, err)
	assert.Empty(t, kws)
}

func TestAddKeywords_NoNameDeduplication(t *testing.T) {
	svc, _, _, _ := newTestService()
	b := signup(t, svc, "a@x.com", "pw1pw1", "Alice")

	_, err := svc.AddKeywords(b.ID, []dto.KeywordInput{{Name: "spa"}})
	require.NoError(t, err)
	kws, err := svc.AddKeywords(b.ID, []dto.KeywordInput{{Name: "spa"}})
	require.NoError(t, err)

	require.Len(t, kws, 2)
	assert.NotEqual(t, kws[0].ID, kws[1].ID)
}

func TestAddKeywords_PreservesInsertionOrder(t *testing.T) {
	svc, _, _, _ := newTestService()
	b := signup(t, svc, "a@x.com", "pw1pw1", "Alice")

	// all three land in one write and must come back in the given order
	kws, err := svc.AddKeywords(b.ID, []dto.KeywordInput{
		{Name: "spa"}, {Name: "nails"}, {Name: "facial"},
	})
	require.NoError(t, err)

	require.Len(t, kws, 3)
	assert.Equal(t, "spa", kws[0].Name)
	assert.Equal(t, "nails", kws[1].Name)
	assert.Equal(t, "facial", kws[2].Name)
}

func TestUpdateOneKeyword(t *testing.T) {
	svc, _, _, _ := newTestService()
	b := signup(t, svc, "a@x.com", "pw1pw1", "Alice")

	kws, err := svc.AddKeywords(b.ID, []dto.KeywordInput{{Name: "spa"}})
	require.NoError(t, err)

	newName := "facial"
	got, err := svc.UpdateOneKeyword(b.ID, kws[0].ID, &newName)
	require.NoError(t, err)
	assert.Equal(t, "facial", got.Name)

	_, err = svc.UpdateOneKeyword(b.ID, "48c5e9df-9a43-41f4-8f9e-2f2b6a3e9b71", &newName)
	assert.ErrorIs(t, err, ErrKeywordNotFound)
}

func TestDeleteKeyword(t *testing.T) {
	svc, _, _, _ := newTestService()
	b := signup(t, svc, "a@x.com", "pw1pw1", "Alice")

	kws, err := svc.AddKeywords(b.ID, []dto.KeywordInput{{Name: "spa"}, {Name: "nails"}})
	require.NoError(t, err)

	rest, err := svc.DeleteKeyword(b.ID, kws[0].ID)
	require.NoError(t, err)
	require.Len(t, rest, 1)

	_, err = svc.DeleteKeyword(b.ID, kws[0].ID)
	assert.ErrorIs(t, err, ErrKeywordNotFound)
}

func TestDeleteAllKeywords_Idempotent(t *testing.T) {
	svc, _, _, _ := newTestService()
	b := signup(t, svc, "a@x.com", "pw1pw1", "Alice")

	_, err := svc.AddKeywords(b.ID, []dto.KeywordInput{{Name: "spa"}, {Name: "nails"}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAllKeywords(b.ID))
	kws, err := svc.GetKeywords(b.ID)
	require.NoError(t, err)
	assert.Empty(t, kws)

	// second clear is a no-op, not an error
	require.NoError(t, svc.DeleteAllKeywords(b.ID))
	kws, err = svc.GetKeywords(b.ID)
	require.NoError(t, err)
	assert.Empty(t, kws)
}

// -------- chatbot --------

func TestSetupChatbot_ReplacesConfigAndNotifies(t *testing.T) {
	svc, _, producer, _ := newTestService()
	b := signup(t, svc, "a@x.com", "pw1pw1", "Alice")

	_, err := svc.AddKeywords(b.ID, []dto.KeywordInput{{Name: "old"}})
	require.NoError(t, err)

	got, err := svc.SetupChatbot(b.ID, dto.SetupChatbotRequest{
		Questions: []dto.QuestionInput{{Name: "What service do you need?"}},
		Keywords:  []dto.KeywordInput{{Name: "spa"}, {Name: "nails"}},
		Services:  []dto.ServiceInput{{Name: "massage"}},
	})
	require.NoError(t, err)

	// setup full-replaces keywords, unlike add
	require.Len(t, got.Keywords, 2)
	assert.Equal(t, "spa", got.Keywords[0].Name)
	require.Len(t, got.Questions, 1)
	require.Len(t, got.Services, 1)

	ev := producer.lastEvent()
	assert.Equal(t, dto.MailKindEmbedCode, ev.Kind)
	assert.Equal(t, b.ID, ev.BusinessID)
}

func TestSetupChatbot_UpsertsMissingBusiness(t *testing.T) {
	svc, repo, producer, _ := newTestService()

	got, err := svc.SetupChatbot(7, dto.SetupChatbotRequest{
		Keywords: []dto.KeywordInput{{Name: "spa"}},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), got.ID)
	assert.NotNil(t, repo.businesses[7])

	// a freshly created row has no email, so nothing to notify
	assert.Empty(t, producer.events)

	// a second placeholder for another unknown id must coexist with the
	// first; email uniqueness applies only to rows with an email set
	got, err = svc.SetupChatbot(8, dto.SetupChatbotRequest{
		Keywords: []dto.KeywordInput{{Name: "nails"}},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(8), got.ID)
	assert.NotNil(t, repo.businesses[7])
	assert.NotNil(t, repo.businesses[8])
}
