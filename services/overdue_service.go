package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"invoicing-backend/models"
	"invoicing-backend/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OverdueService marks unpaid invoices past their due date as overdue
type OverdueService struct {
	db       *gorm.DB
	notifier Notifier
	logger   *zap.Logger
}

func NewOverdueService(db *gorm.DB, notifier Notifier, logger *zap.Logger) *OverdueService {
	return &OverdueService{db: db, notifier: notifier, logger: logger.Named("overdue")}
}

// StartScheduler runs the sweep on the given cron spec until the returned
// cron is stopped.
func (s *OverdueService) StartScheduler(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := s.MarkOverdue(context.Background(), time.Now().UTC()); err != nil {
			s.logger.Error("overdue sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid overdue schedule %q: %w", spec, err)
	}

	c.Start()
	s.logger.Info("overdue scheduler started", zap.String("schedule", spec))
	return c, nil
}

// MarkOverdue flips pending invoices due before today and returns the
// number of changed invoices per user.
func (s *OverdueService) MarkOverdue(ctx context.Context, now time.Time) (map[uint]int, error) {
	today := utils.BeginningOfDay(now)
	db := s.db.WithContext(ctx)

	var invoices []models.Invoice
	if err := db.Where("status = ? AND due_date < ?", models.InvoicePending, today).
		Order("user_id, id").
		Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("find overdue invoices: %w", err)
	}
	if len(invoices) == 0 {
		return map[uint]int{}, nil
	}

	ids := make([]uint, len(invoices))
	numbers := make(map[uint][]string)
	for i, inv := range invoices {
		ids[i] = inv.ID
		numbers[inv.UserID] = append(numbers[inv.UserID], inv.InvoiceNumber)
	}

	if err := db.Model(&models.Invoice{}).
		Where("id IN ? AND status = ?", ids, models.InvoicePending).
		Update("status", models.InvoiceOverdue).Error; err != nil {
		return nil, fmt.Errorf("mark invoices overdue: %w", err)
	}

	counts := make(map[uint]int, len(numbers))
	userIDs := make([]uint, 0, len(numbers))
	for userID, list := range numbers {
		counts[userID] = len(list)
		userIDs = append(userIDs, userID)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })
	s.logger.Info("invoices marked overdue", zap.Int("count", len(ids)), zap.Int("users", len(userIDs)))

	var companies []models.Company
	if err := db.Where("user_id IN ? AND phone <> ''", userIDs).Find(&companies).Error; err != nil {
		s.logger.Error("failed to load companies for notification", zap.Error(err))
		return counts, nil
	}
	for _, company := range companies {
		body := overdueMessage(numbers[company.UserID])
		if err := s.notifier.Notify(ctx, company.Phone, body); err != nil {
			s.logger.Warn("overdue notification failed", zap.Uint("user_id", company.UserID), zap.Error(err))
		}
	}
	return counts, nil
}

func overdueMessage(numbers []string) string {
	if len(numbers) == 1 {
		return fmt.Sprintf("Invoice %s is now overdue.", numbers[0])
	}
	return fmt.Sprintf("%d invoices are now overdue: %s.", len(numbers), strings.Join(numbers, ", "))
}
