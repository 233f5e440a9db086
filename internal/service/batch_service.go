package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"churnflow/internal/domain"
	"churnflow/internal/ingest"
	"churnflow/internal/logger"
	"churnflow/internal/normalize"
	"churnflow/internal/port"
	"churnflow/internal/predictor"
)

const (
	defaultSoftLimit = 1000

	msgNoPrediction = "no prediction returned for record"
	msgInvalid      = "invalid record"
)

// BatchServiceConfig holds batch sizing and parsing settings.
type BatchServiceConfig struct {
	SoftLimit int
	Ingest    ingest.Options
}

// BatchService runs uploaded files through the prediction pipeline.
type BatchService interface {
	// Submit predicts every valid record in one collaborator call and returns
	// one outcome per input record, in input order.
	Submit(ctx context.Context, records []domain.NormalizedRecord) (domain.BatchResult, error)
	// Run parses, normalizes and submits an uploaded file, then stores the run.
	Run(ctx context.Context, filename string, data []byte) (*domain.BatchRun, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.BatchRun, error)
}

type batchService struct {
	predictor port.Predictor
	store     port.BatchStore
	cfg       BatchServiceConfig
	now       func() time.Time
}

// NewBatchService creates a new BatchService implementation.
func NewBatchService(p port.Predictor, store port.BatchStore, cfg BatchServiceConfig) BatchService {
	if cfg.SoftLimit <= 0 {
		cfg.SoftLimit = defaultSoftLimit
	}
	return &batchService{
		predictor: p,
		store:     store,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *batchService) Run(ctx context.Context, filename string, data []byte) (*domain.BatchRun, error) {
	format, err := ingest.FormatFromFilename(filename)
	if err != nil {
		return nil, err
	}

	raws, err := ingest.Parse(data, format, s.cfg.Ingest)
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	var warnings []string
	if len(raws) > s.cfg.SoftLimit {
		warnings = append(warnings, fmt.Sprintf(
			"batch has %d records, above the recommended maximum of %d; processing may be slow",
			len(raws), s.cfg.SoftLimit))
	}

	result, err := s.Submit(ctx, normalize.Normalize(raws))
	if err != nil {
		return nil, err
	}

	run := &domain.BatchRun{
		ID:          uuid.New(),
		Filename:    filename,
		Format:      format,
		Result:      result,
		Warnings:    warnings,
		SubmittedAt: s.now().UTC(),
	}
	if s.store != nil {
		s.store.Put(run)
	}

	logger.FromContext(ctx).Info("batchService.Run: batch processed",
		"batch_id", run.ID, "filename", filename, "records", len(result))
	return run, nil
}

func (s *batchService) Get(_ context.Context, id uuid.UUID) (*domain.BatchRun, error) {
	if s.store == nil {
		return nil, domain.ErrBatchNotFound
	}
	return s.store.Get(id)
}

func (s *batchService) Submit(ctx context.Context, records []domain.NormalizedRecord) (domain.BatchResult, error) {
	result := make(domain.BatchResult, len(records))

	// sentIdx[pos] is the input index of the record sent at position pos.
	var sent []domain.CustomerRecord
	var sentIdx []int
	for i, rec := range records {
		if !rec.IsValid() {
			reason := msgInvalid
			if rec.Invalid != nil {
				reason = rec.Invalid.Reason
			}
			result[i] = domain.FailureOutcome(i, reason)
			continue
		}
		sent = append(sent, *rec.Customer)
		sentIdx = append(sentIdx, i)
	}

	if len(sent) == 0 {
		return result, nil
	}

	outcomes, err := s.predictor.PredictBatch(ctx, sent)
	if err != nil {
		var subErr *domain.SubmissionError
		if errors.As(err, &subErr) {
			logger.FromContext(ctx).Error("batchService.Submit: batch rejected", "records", len(sent), "error", err)
			return nil, err
		}

		msg := wholesaleFailureMessage(err)
		logger.FromContext(ctx).Warn("batchService.Submit: prediction call failed, marking sent records failed",
			"records", len(sent), "error", err)
		for _, i := range sentIdx {
			result[i] = domain.FailureOutcome(i, msg)
		}
		return result, nil
	}

	answered := make([]bool, len(sent))
	for _, o := range outcomes {
		pos := o.Index
		if pos < 0 || pos >= len(sent) {
			logger.FromContext(ctx).Warn("batchService.Submit: ignoring out-of-range outcome", "position", pos, "sent", len(sent))
			continue
		}
		if answered[pos] {
			logger.FromContext(ctx).Warn("batchService.Submit: ignoring duplicate outcome", "position", pos)
			continue
		}
		answered[pos] = true
		o.Index = sentIdx[pos]
		result[o.Index] = o
	}

	for pos, ok := range answered {
		if !ok {
			i := sentIdx[pos]
			result[i] = domain.FailureOutcome(i, msgNoPrediction)
		}
	}
	return result, nil
}

// wholesaleFailureMessage describes a failed collaborator call for every
// record that was part of it.
func wholesaleFailureMessage(err error) string {
	var rlErr *predictor.RateLimitError
	switch {
	case errors.As(err, &rlErr):
		return rlErr.Message()
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return "prediction service timed out"
	case errors.Is(err, context.Canceled):
		return "prediction request canceled"
	default:
		return fmt.Sprintf("prediction service unavailable: %v", err)
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
