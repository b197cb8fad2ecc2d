package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/alert"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/scoring"
	"github.com/fadilmartias/hiring-pipeline/internal/service"
	"github.com/fadilmartias/hiring-pipeline/internal/store"
	"github.com/google/uuid"
)

// PipelineUsecase hosts every pipeline command and query. Each command runs
// as one store transaction; notifications go out after the commit.
type PipelineUsecase struct {
	store      *store.Store
	weights    scoring.StageWeights
	policy     alert.Policy
	alerts     *alert.Cache
	notifier   service.NotifierInterface
	summarizer service.SummarizerInterface
	clock      func() time.Time
	logger     *slog.Logger
}

type Option func(*PipelineUsecase)

// WithClock injects a deterministic clock (tests).
func WithClock(clock func() time.Time) Option {
	return func(uc *PipelineUsecase) {
		if clock != nil {
			uc.clock = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(uc *PipelineUsecase) {
		if logger != nil {
			uc.logger = logger
		}
	}
}

func WithNotifier(n service.NotifierInterface) Option {
	return func(uc *PipelineUsecase) {
		uc.notifier = n
	}
}

func WithSummarizer(s service.SummarizerInterface) Option {
	return func(uc *PipelineUsecase) {
		uc.summarizer = s
	}
}

func WithStageWeights(w scoring.StageWeights) Option {
	return func(uc *PipelineUsecase) {
		if w != nil {
			uc.weights = w
		}
	}
}

func WithAlertPolicy(p alert.Policy) Option {
	return func(uc *PipelineUsecase) {
		uc.policy = p
	}
}

// WithAlertCache shares a cache with the store commit hook built by
// InvalidateAlerts.
func WithAlertCache(c *alert.Cache) Option {
	return func(uc *PipelineUsecase) {
		if c != nil {
			uc.alerts = c
		}
	}
}

func NewPipelineUsecase(st *store.Store, opts ...Option) *PipelineUsecase {
	uc := &PipelineUsecase{
		store:   st,
		weights: scoring.Defaults(),
		policy:  alert.DefaultPolicy(),
		alerts:  alert.NewCache(time.Minute),
		clock:   time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	uc.logger = uc.logger.With("component", "pipeline")
	if uc.notifier == nil {
		uc.notifier = service.NewLogNotifier(uc.logger)
	}
	return uc
}

// InvalidateAlerts is a store commit hook dropping cached alerts of every
// requirement the commit touched.
func InvalidateAlerts(cache *alert.Cache) store.CommitHook {
	return func(changes store.ChangeSet) {
		cache.Invalidate(changes.RequirementIDs...)
	}
}

func (uc *PipelineUsecase) now() time.Time {
	return uc.clock().UTC()
}

func (uc *PipelineUsecase) notify(ctx context.Context, notes ...service.Notification) {
	for _, n := range notes {
		if err := uc.notifier.Notify(ctx, n); err != nil {
			uc.logger.Warn("notification failed", "kind", n.Kind, "candidate_id", n.CandidateID, "error", err)
		}
	}
}

func (uc *PipelineUsecase) audit(ctx context.Context, entry model.AuditEntry, err error) {
	entry.At = uc.now()
	entry.Success = err == nil
	if err != nil {
		entry.Error = err.Error()
	}
	uc.store.AppendAudit(ctx, entry)
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
