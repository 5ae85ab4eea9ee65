package service

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/events"
	"github.com/pebecgov/pebec-app-sub000/internal/policy"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	apperrors "github.com/pebecgov/pebec-app-sub000/pkg/util/errorutil"
)

// newsletterBatch caps recipients per outbox event so a retry re-mails a
// bounded slice of the list.
const newsletterBatch = 50

// NewsletterService manages the mailing list and bulletins.
type NewsletterService struct {
	newsletters repository.NewsletterRepository
	events      publisher
	logger      *zap.Logger
	now         Clock
}

// NewsletterDependencies bundles collaborators.
type NewsletterDependencies struct {
	NewsletterRepo repository.NewsletterRepository
	Publisher      events.Publisher
	Logger         *zap.Logger
	Clock          Clock
}

// NewNewsletterService builds the service.
func NewNewsletterService(deps NewsletterDependencies) *NewsletterService {
	logger := loggerOrNop(deps.Logger)
	return &NewsletterService{
		newsletters: deps.NewsletterRepo,
		events:      publisher{pub: deps.Publisher, logger: logger},
		logger:      logger,
		now:         clockOrDefault(deps.Clock),
	}
}

// Subscribe adds or reactivates an address.
func (s *NewsletterService) Subscribe(ctx context.Context, email, name string) (*domain.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError("invalid email", map[string]any{"email": "must be a valid email address"})
	}
	sub := &domain.Subscriber{Email: email, Name: strings.TrimSpace(name)}
	if err := s.newsletters.Subscribe(ctx, sub); err != nil {
		return nil, apperrors.MapError(err)
	}
	return sub, nil
}

// Unsubscribe deactivates an address. Unknown addresses are not an error.
func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperrors.NewValidationError("email is required", map[string]any{"email": "is required"})
	}
	_, err := s.newsletters.Unsubscribe(ctx, email, s.now().UTC())
	return apperrors.MapError(err)
}

// CreateNewsletter stores a draft.
func (s *NewsletterService) CreateNewsletter(ctx context.Context, caller *domain.User, subject, html string) (*domain.Newsletter, error) {
	if err := policy.RequireAll(caller, policy.NewsletterManage); err != nil {
		return nil, err
	}
	details := map[string]any{}
	if strings.TrimSpace(subject) == "" {
		details["subject"] = "is required"
	}
	if strings.TrimSpace(html) == "" {
		details["html_body"] = "is required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid newsletter", details)
	}
	n := &domain.Newsletter{
		Subject:   strings.TrimSpace(subject),
		HTMLBody:  html,
		Status:    domain.NewsletterDraft,
		CreatedBy: caller.ID,
	}
	if err := s.newsletters.Create(ctx, n); err != nil {
		return nil, apperrors.MapError(err)
	}
	return n, nil
}

// ListNewsletters lists drafts and sent bulletins.
func (s *NewsletterService) ListNewsletters(ctx context.Context, caller *domain.User) ([]domain.Newsletter, error) {
	if err := policy.RequireAll(caller, policy.NewsletterManage); err != nil {
		return nil, err
	}
	list, err := s.newsletters.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// SendNewsletter flips a draft to sent and queues mail to every active
// subscriber. A second send is refused.
func (s *NewsletterService) SendNewsletter(ctx context.Context, caller *domain.User, id string) (*domain.Newsletter, error) {
	if err := policy.RequireAll(caller, policy.NewsletterManage); err != nil {
		return nil, err
	}
	n, err := s.newsletters.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "newsletter", map[string]any{"newsletter_id": id})
	}
	if n.Status == domain.NewsletterSent {
		return nil, apperrors.NewConflict("newsletter already sent", map[string]any{"newsletter_id": id})
	}
	subscribers, err := s.newsletters.ListActiveSubscribers(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.now().UTC()
	ok, err := s.newsletters.MarkSent(ctx, id, now, len(subscribers))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !ok {
		return nil, apperrors.NewConflict("newsletter already sent", map[string]any{"newsletter_id": id})
	}
	n.Status = domain.NewsletterSent
	n.SentAt = &now
	n.SentCount = len(subscribers)

	emails := make([]string, 0, len(subscribers))
	for _, sub := range subscribers {
		emails = append(emails, sub.Email)
	}
	for start := 0; start < len(emails); start += newsletterBatch {
		end := min(start+newsletterBatch, len(emails))
		s.events.notify(ctx, n.ID, caller, events.NotifyPayload{
			Audience:   events.Audience{Emails: emails[start:end]},
			Type:       domain.NotificationNewsletter,
			Message:    n.Subject,
			Subject:    n.Subject,
			HTML:       n.HTMLBody,
			EntityType: "newsletter",
			EntityID:   strPtr(n.ID),
		})
	}
	s.logger.Info("newsletter sent", zap.String("newsletter_id", n.ID), zap.Int("recipients", n.SentCount))
	return n, nil
}
