package repository

import (
	"errors"
	"log"
	"time"

	"github.com/glowdesk/business_service/internal/domain"
	"github.com/glowdesk/business_service/internal/helper"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicateEmail surfaces the unique index on business email so the service
// can report it even when two signups race past its existence check.
var ErrDuplicateEmail = errors.New("email already exist")

// ErrNotFound reports a lookup miss. Services translate it into their own
// not-registered failure; any other lookup error is a store failure and must
// not reach clients as a business-rule message.
var ErrNotFound = errors.New("record not found")

type BusinessRepository interface {
	Create(b *domain.Business) (*domain.Business, error)
	FindByEmail(email string) (*domain.Business, error)
	FindByID(id uint) (*domain.Business, error)

	SetLoginToken(id uint, token string, at time.Time) error
	ClearLoginToken(id uint) error
	SetResetToken(id uint, token string) error
	// ConsumeResetToken swaps the password hash in the same statement that
	// matches the stored reset token, so a replayed token can never win.
	ConsumeResetToken(id uint, token string, newHash string) (bool, error)
	SetEmailVerified(id uint, verified bool) error

	SetThemeColor(id uint, color string) error
	SetLogo(id uint, url string, publicID string) error
	UpdateDetails(id uint, fields map[string]interface{}) error

	AddKeywords(businessID uint, kws []domain.Keyword) error
	GetKeywords(businessID uint) ([]domain.Keyword, error)
	UpdateKeywordName(businessID uint, keywordID string, name string) (bool, error)
	DeleteKeyword(businessID uint, keywordID string) (bool, error)
	DeleteAllKeywords(businessID uint) error

	UpsertChatbotConfig(businessID uint, questions []domain.ChatbotQuestion, kws []domain.Keyword, services []domain.ChatbotService) (*domain.Business, error)
}

type businessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) Create(b *domain.Business) (*domain.Business, error) {
	if b == nil {
		return nil, errors.New("nil business")
	}

	if err := r.db.Create(b).Error; err != nil {
		if helper.IsDuplicateKey(err) {
			return nil, ErrDuplicateEmail
		}
		log.Printf("create business error: %v", err)
		return nil, errors.New("failed to create business")
	}

	return b, nil
}

func (r *businessRepository) FindByEmail(email string) (*domain.Business, error) {
	business := &domain.Business{}

	if err := r.db.Preload("Keywords", keywordOrder).First(business, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Printf("find business by email error: %v", err)
		return nil, errors.New("failed to find business by email")
	}

	return business, nil
}

func (r *businessRepository) FindByID(id uint) (*domain.Business, error) {
	business := &domain.Business{}

	if err := r.db.Preload("Keywords", keywordOrder).First(business, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Printf("find business by id error: %v", err)
		return nil, errors.New("failed to find business by ID")
	}

	return business, nil
}

// keywordOrder sorts by the insert sequence so batches created in one
// statement come back in the order they were given.
func keywordOrder(db *gorm.DB) *gorm.DB {
	return db.Order("keywords.seq")
}

func (r *businessRepository) SetLoginToken(id uint, token string, at time.Time) error {
	return r.updateColumns(id, map[string]interface{}{
		"login_token": token,
		"login_time":  at,
	})
}

func (r *businessRepository) ClearLoginToken(id uint) error {
	return r.updateColumns(id, map[string]interface{}{
		"login_token": nil,
	})
}

func (r *businessRepository) SetResetToken(id uint, token string) error {
	return r.updateColumns(id, map[string]interface{}{
		"reset_password_token": token,
	})
}

func (r *businessRepository) ConsumeResetToken(id uint, token string, newHash string) (bool, error) {
	res := r.db.Model(&domain.Business{}).
		Where("id = ? AND reset_password_token = ?", id, token).
		Updates(map[string]interface{}{
			"reset_password_token": nil,
			"password_hash":        newHash,
		})
	if res.Error != nil {
		log.Printf("consume reset token error: %v", res.Error)
		return false, errors.New("failed to reset password")
	}
	return res.RowsAffected > 0, nil
}

func (r *businessRepository) SetEmailVerified(id uint, verified bool) error {
	return r.updateColumns(id, map[string]interface{}{
		"is_email_verified": verified,
	})
}

func (r *businessRepository) SetThemeColor(id uint, color string) error {
	return r.updateColumns(id, map[string]interface{}{
		"theme_color": color,
	})
}

func (r *businessRepository) SetLogo(id uint, url string, publicID string) error {
	return r.updateColumns(id, map[string]interface{}{
		"logo_url":       url,
		"logo_public_id": publicID,
	})
}

// UpdateDetails applies an already allow-listed column map in one statement.
func (r *businessRepository) UpdateDetails(id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.updateColumns(id, fields)
}

func (r *businessRepository) updateColumns(id uint, fields map[string]interface{}) error {
	if err := r.db.Model(&domain.Business{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		log.Printf("update business %d error: %v", id, err)
		return errors.New("failed to update business")
	}
	return nil
}

func (r *businessRepository) AddKeywords(businessID uint, kws []domain.Keyword) error {
	if len(kws) == 0 {
		return nil
	}
	if err := r.db.Create(&kws).Error; err != nil {
		log.Printf("add keywords error: %v", err)
		return errors.New("failed to add keywords")
	}
	return nil
}

func (r *businessRepository) GetKeywords(businessID uint) ([]domain.Keyword, error) {
	var kws []domain.Keyword
	if err := r.db.Where("business_id = ?", businessID).Order("seq").Find(&kws).Error; err != nil {
		log.Printf("get keywords error: %v", err)
		return nil, errors.New("failed to get keywords")
	}
	return kws, nil
}

func (r *businessRepository) UpdateKeywordName(businessID uint, keywordID string, name string) (bool, error) {
	res := r.db.Model(&domain.Keyword{}).
		Where("business_id = ? AND id = ?", businessID, keywordID).
		Update("name", name)
	if res.Error != nil {
		log.Printf("update keyword error: %v", res.Error)
		return false, errors.New("failed to update keyword")
	}
	return res.RowsAffected > 0, nil
}

func (r *businessRepository) DeleteKeyword(businessID uint, keywordID string) (bool, error) {
	res := r.db.Where("business_id = ? AND id = ?", businessID, keywordID).Delete(&domain.Keyword{})
	if res.Error != nil {
		log.Printf("delete keyword error: %v", res.Error)
		return false, errors.New("failed to delete keyword")
	}
	return res.RowsAffected > 0, nil
}

func (r *businessRepository) DeleteAllKeywords(businessID uint) error {
	if err := r.db.Where("business_id = ?", businessID).Delete(&domain.Keyword{}).Error; err != nil {
		log.Printf("delete all keywords error: %v", err)
		return errors.New("failed to delete keywords")
	}
	return nil
}

// UpsertChatbotConfig is the one create-on-missing write in the store:
// questions and services are replaced on the business row, keywords are
// replaced wholesale, all in a single transaction.
func (r *businessRepository) UpsertChatbotConfig(
	businessID uint,
	questions []domain.ChatbotQuestion,
	kws []domain.Keyword,
	services []domain.ChatbotService,
) (*domain.Business, error) {
	business := &domain.Business{}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		row := domain.Business{
			ID:        businessID,
			Questions: questions,
			Services:  services,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"questions", "services", "updated_at"}),
		}).Create(&row).Error; err != nil {
			return err
		}

		if err := tx.Where("business_id = ?", businessID).Delete(&domain.Keyword{}).Error; err != nil {
			return err
		}
		if len(kws) > 0 {
			if err := tx.Create(&kws).Error; err != nil {
				return err
			}
		}

		return tx.Preload("Keywords", keywordOrder).First(business, businessID).Error
	})
	if err != nil {
		log.Printf("upsert chatbot config error: %v", err)
		return nil, errors.New("failed to save chatbot config")
	}

	return business, nil
}
