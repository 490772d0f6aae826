package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/sahminvest/marketplace/internal/config"
	"github.com/sahminvest/marketplace/internal/logger"
)

// DistributionSummaryEmail carries the admin notification payload for an
// approved distribution.
type DistributionSummaryEmail struct {
	DealTitle        string
	TotalAmount      float64
	DistributionType string
	InvestorCount    int
	ApprovedBy       int64
}

// Mailer sends administrative emails. Delivery is best-effort; callers must
// never fail a financial operation on a mailer error.
type Mailer interface {
	NotifyAdminProfitDistribution(ctx context.Context, summary DistributionSummaryEmail) error
}

// New picks a mailer implementation from config. Missing mailgun settings
// fall back to a log-only mock so local development works without keys.
func New(cfg *config.Config) Mailer {
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
		logger.L.Info("Mailgun configuration incomplete, using mock mailer")
		return &MockMailer{}
	}

	logger.L.Info("Mailgun mailer initialized", "domain", cfg.MailgunDomain)
	return &MailgunMailer{
		mg:          mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey),
		senderEmail: cfg.SenderEmail,
		senderName:  cfg.SenderName,
		adminEmails: cfg.AdminEmails,
	}
}

// MailgunMailer delivers via the Mailgun API
type MailgunMailer struct {
	mg          *mailgun.MailgunImpl
	senderEmail string
	senderName  string
	adminEmails []string
}

// NotifyAdminProfitDistribution emails a distribution summary to the admins
func (m *MailgunMailer) NotifyAdminProfitDistribution(ctx context.Context, summary DistributionSummaryEmail) error {
	if len(m.adminEmails) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Profit distribution approved: %s", summary.DealTitle)
	body := fmt.Sprintf(
		"A %s distribution of %.2f for %s was approved by admin %d and paid to %d investors.",
		summary.DistributionType, summary.TotalAmount, summary.DealTitle,
		summary.ApprovedBy, summary.InvestorCount,
	)

	sender := fmt.Sprintf("%s <%s>", m.senderName, m.senderEmail)
	message := m.mg.NewMessage(sender, subject, body, m.adminEmails...)

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, _, err := m.mg.Send(sendCtx, message); err != nil {
		return fmt.Errorf("failed to send admin email to %s: %w", strings.Join(m.adminEmails, ","), err)
	}
	return nil
}

// MockMailer logs instead of sending; used when mailgun is not configured
type MockMailer struct{}

// NotifyAdminProfitDistribution logs the summary that would have been emailed
func (m *MockMailer) NotifyAdminProfitDistribution(ctx context.Context, summary DistributionSummaryEmail) error {
	logger.L.Info("MOCK EMAIL: distribution approved",
		"deal", summary.DealTitle,
		"type", summary.DistributionType,
		"total", summary.TotalAmount,
		"investors", summary.InvestorCount,
		"approvedBy", summary.ApprovedBy,
	)
	return nil
}
