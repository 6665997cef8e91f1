// File: internal/notification/service.go
package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/config"
	"unihomes_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// messageContent is what an event renders into: the in-app row text and the
// email body. Token-bearing emails (verification, password reset) skip the
// in-app row so credential links never sit in the database.
type messageContent struct {
	Title    string
	Message  string
	EmailTpl *template.Template
	InApp    bool
}

type emailData struct {
	Name string
	Link string
	Data map[string]string
}

var (
	verifyEmailTpl = template.Must(template.New("verify_email").Parse(`
<p>Hi {{.Name}},</p>
<p>Welcome to UniHomes! Please confirm your email address to activate your account.</p>
<p><a href="{{.Link}}">Verify my email</a></p>
<p>If you did not create this account, you can ignore this message.</p>`))

	passwordResetTpl = template.Must(template.New("password_reset").Parse(`
<p>Hi {{.Name}},</p>
<p>We received a request to reset your password.</p>
<p><a href="{{.Link}}">Choose a new password</a></p>
<p>This link expires shortly. If you did not request a reset, no action is needed.</p>`))

	passwordChangedTpl = template.Must(template.New("password_changed").Parse(`
<p>Hi {{.Name}},</p>
<p>Your UniHomes password was just changed. If this was not you, reset your password immediately and contact support.</p>`))

	paymentSubmittedTpl = template.Must(template.New("payment_submitted").Parse(`
<p>Hi {{.Name}},</p>
<p>We received your payment proof <strong>{{.Data.reference}}</strong> for <strong>{{.Data.listing_title}}</strong>.</p>
<p>Our team will review it shortly and you will be notified of the outcome.</p>`))

	paymentApprovedTpl = template.Must(template.New("payment_approved").Parse(`
<p>Hi {{.Name}},</p>
<p>Your payment for <strong>{{.Data.listing_title}}</strong> has been approved. The full listing details are now unlocked for you.</p>
<p><a href="{{.Link}}">View your unlocked listings</a></p>`))

	paymentRejectedTpl = template.Must(template.New("payment_rejected").Parse(`
<p>Hi {{.Name}},</p>
<p>Unfortunately your payment proof <strong>{{.Data.reference}}</strong> could not be approved.</p>
<p>Reason: {{.Data.rejection_reason}}</p>
<p>You can submit a new proof once the issue is resolved.</p>`))

	agentVerifiedTpl = template.Must(template.New("agent_verified").Parse(`
<p>Hi {{.Name}},</p>
<p>Your agent account has been verified. Your listings now carry the verified badge.</p>`))
)

// Service turns notification events into in-app rows and emails, and serves
// the viewer-facing notification feed.
type Service struct {
	repo   Repository
	mailer Mailer
	cfg    *config.Config
	logger *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, mailer Mailer, cfg *config.Config, logger *zap.Logger) *Service {
	return &Service{repo: repo, mailer: mailer, cfg: cfg, logger: logger}
}

// HandleEvent processes one event end to end. Failures are logged, never
// propagated: delivery is best effort and must not affect the producing
// request.
func (s *Service) HandleEvent(ctx context.Context, event shared.NotificationEvent) {
	content, link := s.render(event)
	if content == nil {
		s.logger.Warn("Dropping notification event of unknown type", zap.String("type", event.Type))
		return
	}

	if content.InApp {
		row := &Notification{
			UserID:  event.RecipientID,
			Type:    event.Type,
			Title:   content.Title,
			Message: content.Message,
		}
		if err := s.repo.Create(ctx, row); err != nil {
			s.logger.Error("Failed to persist notification",
				zap.Error(err),
				zap.String("type", event.Type),
				zap.String("userID", event.RecipientID.String()))
		}
	}

	if event.RecipientEmail == "" {
		return
	}
	var body bytes.Buffer
	data := emailData{Name: event.RecipientName, Link: link, Data: event.Data}
	if err := content.EmailTpl.Execute(&body, data); err != nil {
		s.logger.Error("Failed to render notification email",
			zap.Error(err), zap.String("type", event.Type))
		return
	}
	if err := s.mailer.Send(ctx, event.RecipientEmail, content.Title, body.String()); err != nil {
		s.logger.Error("Failed to send notification email",
			zap.Error(err),
			zap.String("type", event.Type),
			zap.String("to", event.RecipientEmail))
	}
}

// render maps an event type to its content and action link.
func (s *Service) render(event shared.NotificationEvent) (*messageContent, string) {
	base := s.cfg.FrontendBaseURL
	switch event.Type {
	case shared.EventUserRegistered, shared.EventEmailVerificationResent:
		return &messageContent{
			Title:    "Verify your UniHomes email",
			EmailTpl: verifyEmailTpl,
		}, fmt.Sprintf("%s/verify-email?token=%s", base, url.QueryEscape(event.Data["verification_token"]))

	case shared.EventPasswordResetRequested:
		return &messageContent{
			Title:    "Reset your UniHomes password",
			EmailTpl: passwordResetTpl,
		}, fmt.Sprintf("%s/reset-password?token=%s", base, url.QueryEscape(event.Data["reset_token"]))

	case shared.EventPasswordChanged:
		return &messageContent{
			Title:    "Your password was changed",
			Message:  "Your account password was changed. If this was not you, contact support.",
			EmailTpl: passwordChangedTpl,
			InApp:    true,
		}, ""

	case shared.EventPaymentSubmitted:
		return &messageContent{
			Title:    "Payment proof received",
			Message:  fmt.Sprintf("We received your payment proof %s for %q. It is pending review.", event.Data["reference"], event.Data["listing_title"]),
			EmailTpl: paymentSubmittedTpl,
			InApp:    true,
		}, ""

	case shared.EventPaymentApproved:
		return &messageContent{
			Title:    "Payment approved",
			Message:  fmt.Sprintf("Your payment for %q was approved. The listing is now unlocked.", event.Data["listing_title"]),
			EmailTpl: paymentApprovedTpl,
			InApp:    true,
		}, base + "/me/unlocked-listings"

	case shared.EventPaymentRejected:
		return &messageContent{
			Title:    "Payment rejected",
			Message:  fmt.Sprintf("Your payment proof %s was rejected: %s", event.Data["reference"], event.Data["rejection_reason"]),
			EmailTpl: paymentRejectedTpl,
			InApp:    true,
		}, ""

	case shared.EventAgentVerified:
		return &messageContent{
			Title:    "Your agent account is verified",
			Message:  "Your agent account has been verified by an administrator.",
			EmailTpl: agentVerifiedTpl,
			InApp:    true,
		}, ""
	}
	return nil, ""
}

// ListMine returns a page of the caller's notifications plus the unread count.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, pq common.PaginationQuery) ([]Notification, int64, int64, error) {
	notifications, total, err := s.repo.ListByUser(ctx, userID, pq)
	if err != nil {
		return nil, 0, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, 0, err
	}
	return notifications, total, unread, nil
}

// MarkRead marks a single notification of the caller as read.
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, id)
}

// MarkAllRead marks all the caller's notifications read.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
