package repository

import (
	"errors"
	"log"

	"github.com/glowdesk/business_service/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository interface {
	Upsert(sub *domain.Subscription) error
	FindActiveByBusinessID(businessID uint) (*domain.Subscription, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Upsert(sub *domain.Subscription) error {
	if sub == nil {
		return errors.New("nil subscription")
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "subscription_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "current_period_start", "current_period_end",
			"cancel_at_period_end", "updated_at",
		}),
	}).Create(sub).Error
	if err != nil {
		log.Printf("upsert subscription error: %v", err)
		return errors.New("failed to save subscription")
	}
	return nil
}

func (r *subscriptionRepository) FindActiveByBusinessID(businessID uint) (*domain.Subscription, error) {
	sub := &domain.Subscription{}

	err := r.db.Where("business_id = ? AND status IN ?", businessID, []string{"active", "trialing"}).
		Order("created_at DESC").
		First(sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Printf("find active subscription error: %v", err)
		return nil, errors.New("failed to find active subscription")
	}

	return sub, nil
}
