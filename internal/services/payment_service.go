package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/chitra/internal/models"
)

var premiumPlans = map[string]struct{}{
	"monthly":  {},
	"yearly":   {},
	"lifetime": {},
}

type PaymentRepository interface {
	Load(ctx context.Context) (models.Payment, bool, error)
	Save(ctx context.Context, record *models.Payment) error
}

// PaymentService keeps the local premium flag. Receipts are stored as given;
// nothing is verified against a store.
type PaymentService struct {
	repo PaymentRepository
	now  func() time.Time
}

func NewPaymentService(repo PaymentRepository) *PaymentService {
	return &PaymentService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (service *PaymentService) Status(ctx context.Context) (models.Payment, error) {
	payment, found, err := service.repo.Load(ctx)
	if err != nil {
		return models.Payment{}, err
	}
	if !found {
		return models.Payment{ID: models.PaymentID}, nil
	}
	return payment, nil
}

func (service *PaymentService) Activate(ctx context.Context, plan string, receipt string) (models.Payment, error) {
	plan = strings.ToLower(strings.TrimSpace(plan))
	if _, ok := premiumPlans[plan]; !ok {
		return models.Payment{}, fmt.Errorf("%w: plan %q", ErrInvalidRecordInput, plan)
	}

	now := service.now()
	payment := models.Payment{
		ID:          models.PaymentID,
		Premium:     true,
		Plan:        plan,
		PurchasedAt: &now,
		Receipt:     strings.TrimSpace(receipt),
		UpdatedAt:   now,
	}
	if err := service.repo.Save(ctx, &payment); err != nil {
		return models.Payment{}, err
	}
	return payment, nil
}

func (service *PaymentService) Revoke(ctx context.Context) (models.Payment, error) {
	payment := models.Payment{ID: models.PaymentID, UpdatedAt: service.now()}
	if err := service.repo.Save(ctx, &payment); err != nil {
		return models.Payment{}, err
	}
	return payment, nil
}
