package services

import (
	"context"
	"errors"
	"time"

	"github.com/glowdesk/business_service/internal/clients/payments"
	"github.com/glowdesk/business_service/internal/domain"
	"github.com/glowdesk/business_service/internal/repository"
)

// PaymentProvider is the slice of the payment client the subscription flow
// needs; *payments.Client satisfies it.
type PaymentProvider interface {
	CreateCustomer(ctx context.Context, email, name string) (*payments.Customer, error)
	CreateSubscription(ctx context.Context, customerID, paymentMethodID, priceID string) (*payments.Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*payments.Subscription, error)
	ListCards(ctx context.Context, customerID string) ([]payments.Card, error)
	RemoveCard(ctx context.Context, customerID, cardID string) error
	ListPlans(ctx context.Context) ([]payments.Plan, error)
}

type SubscriptionService interface {
	CreateSubscription(ctx context.Context, businessID uint, paymentMethodID, priceID string) (*domain.Subscription, error)
	CancelSubscription(ctx context.Context, businessID uint) (*domain.Subscription, error)
	GetActiveSubscription(businessID uint) (*domain.Subscription, error)
	ListSavedCards(ctx context.Context, businessID uint) ([]payments.Card, error)
	RemoveSavedCard(ctx context.Context, businessID uint, cardID string) error
	ListPlans(ctx context.Context) ([]payments.Plan, error)
}

type subscriptionService struct {
	businessRepo repository.BusinessRepository
	subRepo      repository.SubscriptionRepository
	provider     PaymentProvider
}

func NewSubscriptionService(
	businessRepo repository.BusinessRepository,
	subRepo repository.SubscriptionRepository,
	provider PaymentProvider,
) SubscriptionService {
	return &subscriptionService{
		businessRepo: businessRepo,
		subRepo:      subRepo,
		provider:     provider,
	}
}

// findBusiness maps a lookup miss to the rule failure; store failures pass
// through untouched so they stay on the opaque server-error path.
func (s *subscriptionService) findBusiness(businessID uint) (*domain.Business, error) {
	business, err := s.businessRepo.FindByID(businessID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}
	return business, nil
}

func (s *subscriptionService) findActive(businessID uint) (*domain.Subscription, error) {
	sub, err := s.subRepo.FindActiveByBusinessID(businessID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoSubscription
		}
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, businessID uint, paymentMethodID, priceID string) (*domain.Subscription, error) {
	business, err := s.findBusiness(businessID)
	if err != nil {
		return nil, err
	}

	customerID := business.PaymentCustomerID
	if customerID == "" {
		customer, err := s.provider.CreateCustomer(ctx, business.Email, business.Name)
		if err != nil {
			return nil, err
		}
		customerID = customer.ID
		if err := s.businessRepo.UpdateDetails(business.ID, map[string]interface{}{
			"payment_customer_id": customerID,
		}); err != nil {
			return nil, err
		}
	}

	sub, err := s.provider.CreateSubscription(ctx, customerID, paymentMethodID, priceID)
	if err != nil {
		return nil, err
	}

	snapshot := snapshotOf(business.ID, sub)
	if err := s.subRepo.Upsert(snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, businessID uint) (*domain.Subscription, error) {
	active, err := s.findActive(businessID)
	if err != nil {
		return nil, err
	}

	sub, err := s.provider.CancelSubscription(ctx, active.SubscriptionID)
	if err != nil {
		return nil, err
	}

	snapshot := snapshotOf(businessID, sub)
	if err := s.subRepo.Upsert(snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (s *subscriptionService) GetActiveSubscription(businessID uint) (*domain.Subscription, error) {
	return s.findActive(businessID)
}

func (s *subscriptionService) ListSavedCards(ctx context.Context, businessID uint) ([]payments.Card, error) {
	business, err := s.findBusiness(businessID)
	if err != nil {
		return nil, err
	}
	if business.PaymentCustomerID == "" {
		return []payments.Card{}, nil
	}

	return s.provider.ListCards(ctx, business.PaymentCustomerID)
}

func (s *subscriptionService) RemoveSavedCard(ctx context.Context, businessID uint, cardID string) error {
	business, err := s.findBusiness(businessID)
	if err != nil {
		return err
	}
	if business.PaymentCustomerID == "" {
		return ErrNoSubscription
	}

	return s.provider.RemoveCard(ctx, business.PaymentCustomerID, cardID)
}

func (s *subscriptionService) ListPlans(ctx context.Context) ([]payments.Plan, error) {
	return s.provider.ListPlans(ctx)
}

func snapshotOf(businessID uint, sub *payments.Subscription) *domain.Subscription {
	return &domain.Subscription{
		BusinessID:         businessID,
		CustomerID:         sub.CustomerID,
		SubscriptionID:     sub.ID,
		Status:             sub.Status,
		PriceID:            sub.PriceID,
		CurrentPeriodStart: time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:   time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		Amount:             sub.Amount,
		Currency:           sub.Currency,
		PaymentMethodID:    sub.PaymentMethodID,
	}
}
