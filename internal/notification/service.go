package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// Service handles notification business logic
type Service struct {
	repo *Repository
}

// NewService creates a new notification service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new notification
func (s *Service) Create(ctx context.Context, recipientID int64, title, message string, notifType Type, metadata map[string]string) (*Notification, error) {
	return s.repo.Create(ctx, recipientID, title, message, notifType, metadata)
}

// ListByRecipient retrieves notifications for a user
func (s *Service) ListByRecipient(ctx context.Context, recipientID int64, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByRecipient(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read for its recipient
func (s *Service) MarkAsRead(ctx context.Context, id, recipientID int64) error {
	updated, err := s.repo.MarkAsRead(ctx, id, recipientID)
	if err != nil {
		return err
	}
	if !updated {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead marks all notifications as read for a recipient
func (s *Service) MarkAllAsRead(ctx context.Context, recipientID int64) error {
	return s.repo.MarkAllAsRead(ctx, recipientID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, recipientID int64) (int, error) {
	return s.repo.GetUnreadCount(ctx, recipientID)
}

// NotifyDistributionTx writes a distribution-outcome notification for an
// investor inside the approval transaction, in the investor's language.
func (s *Service) NotifyDistributionTx(ctx context.Context, tx *sql.Tx, recipientID int64, language, dealTitle string, capital, profit float64, requestID int64) (*Notification, error) {
	title, message := distributionMessage(language, dealTitle, capital, profit)
	return s.repo.CreateTx(ctx, tx, recipientID, title, message, TypeProfitDistribution, map[string]string{
		"request_id": strconv.FormatInt(requestID, 10),
		"deal_title": dealTitle,
	})
}

// NotifyPartnerOutcomeTx writes the request-outcome notification for the
// submitting partner inside the approval transaction.
func (s *Service) NotifyPartnerOutcomeTx(ctx context.Context, tx *sql.Tx, partnerID int64, dealTitle, outcome string, requestID int64) (*Notification, error) {
	title := "Distribution request " + outcome
	message := fmt.Sprintf("Your distribution request for %s has been %s", dealTitle, outcome)
	return s.repo.CreateTx(ctx, tx, partnerID, title, message, TypeDistributionOutcome, map[string]string{
		"request_id": strconv.FormatInt(requestID, 10),
		"deal_title": dealTitle,
	})
}

// distributionMessage renders the investor-facing text. Arabic investors
// get Arabic copy; everyone else gets English.
func distributionMessage(language, dealTitle string, capital, profit float64) (string, string) {
	if language == "ar" {
		if profit > 0 {
			return "توزيع أرباح",
				fmt.Sprintf("استلمت %.2f رأس مال و %.2f أرباح من %s", capital, profit, dealTitle)
		}
		return "استرداد رأس المال",
			fmt.Sprintf("استلمت %.2f من رأس المال من %s", capital, dealTitle)
	}
	if profit > 0 {
		return "Profit distribution",
			fmt.Sprintf("You received %.2f capital and %.2f profit from %s", capital, profit, dealTitle)
	}
	return "Capital return",
		fmt.Sprintf("You received %.2f returned capital from %s", capital, dealTitle)
}
