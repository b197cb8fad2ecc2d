package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/config"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotifyInterviewScheduled   NotificationKind = "interview-scheduled"
	NotifyInterviewInvite      NotificationKind = "interview-invite"
	NotifyInterviewRescheduled NotificationKind = "interview-rescheduled"
	NotifyInterviewCancelled   NotificationKind = "interview-cancelled"
	NotifyFeedbackSubmitted    NotificationKind = "feedback-submitted"
	NotifyCandidateHired       NotificationKind = "candidate-hired"
	NotifyVerificationDone     NotificationKind = "verification-completed"
)

// Notification says that something is due; delivery is up to the notifier.
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	CandidateID uuid.UUID        `json:"candidate_id"`
	ScheduleID  *uuid.UUID       `json:"schedule_id,omitempty"`
	Stage       model.Stage      `json:"stage,omitempty"`
	Recipient   string           `json:"recipient,omitempty"`
	At          time.Time        `json:"at"`
	Data        map[string]any   `json:"data,omitempty"`
}

type NotifierInterface interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the log. Used when no webhook is set.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, msg Notification) error {
	n.logger.Info("notification due",
		"kind", msg.Kind,
		"candidate_id", msg.CandidateID,
		"stage", msg.Stage,
		"recipient", msg.Recipient,
	)
	return nil
}

// WebhookNotifier posts notifications as JSON to a configured URL.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

func NewWebhookNotifier(cfg *config.NotifierConfig) *WebhookNotifier {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Content-Type", "application/json")
	if cfg.Secret != "" {
		client.SetHeader("X-Webhook-Secret", cfg.Secret)
	}
	return &WebhookNotifier{client: client, url: cfg.WebhookURL}
}

func (n *WebhookNotifier) Notify(ctx context.Context, msg Notification) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("post notification: webhook returned %s", resp.Status())
	}
	return nil
}

// NewNotifier picks the webhook notifier when a URL is configured.
func NewNotifier(cfg *config.NotifierConfig, logger *slog.Logger) NotifierInterface {
	if cfg != nil && cfg.WebhookURL != "" {
		return NewWebhookNotifier(cfg)
	}
	return NewLogNotifier(logger)
}
