// Package generation drives one tailoring request from prompt to persisted
// gap analysis.
package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/events"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/sections"
	"github.com/jonathan/resume-tailor/internal/streaming"
)

// DefaultPersistTimeout bounds the gap write after a stream completes.
const DefaultPersistTimeout = 10 * time.Second

const missingInputMessage = "Both profile and job description are required."

// TaskStore is the slice of task storage the orchestrator needs.
type TaskStore interface {
	GetTask(ctx context.Context, taskID, userID uuid.UUID) (*db.Task, error)
	SetTaskGaps(ctx context.Context, taskID, userID uuid.UUID, gaps string) error
}

// Sink receives each increment as soon as it arrives.
type Sink interface {
	Write(delta string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(delta string) error

func (f SinkFunc) Write(delta string) error { return f(delta) }

// Request is one generation request.
type Request struct {
	OwnerID     uuid.UUID
	TaskID      uuid.UUID
	ProfileText string
	JobText     string
}

// Outcome describes a completed stream. A failed gap write does not fail the
// generation; it is reported in PersistErr.
type Outcome struct {
	Text       string
	Chunks     int
	Gaps       string
	GapsFound  bool
	GapsSaved  bool
	PersistErr error
}

// Orchestrator runs generations.
type Orchestrator struct {
	store          TaskStore
	streamer       llm.Streamer
	publisher      events.Publisher
	locks          *TaskLocks
	logger         *zap.Logger
	persistTimeout time.Duration
	now            func() time.Time
}

// New creates an Orchestrator. publisher and logger may be nil.
func New(store TaskStore, streamer llm.Streamer, publisher events.Publisher, logger *zap.Logger) *Orchestrator {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Orchestrator{
		store:          store,
		streamer:       streamer,
		publisher:      publisher,
		locks:          NewTaskLocks(),
		logger:         logging.OrNop(logger),
		persistTimeout: DefaultPersistTimeout,
		now:            time.Now,
	}
}

// Validate checks the request against storage without contacting the
// generation service. It returns ErrUnauthorized, *InvalidInputError,
// ErrNotFound, or a storage error.
func (o *Orchestrator) Validate(ctx context.Context, req Request) error {
	if req.OwnerID == uuid.Nil {
		return ErrUnauthorized
	}
	if strings.TrimSpace(req.ProfileText) == "" {
		return &InvalidInputError{Field: "existing_profile", Message: missingInputMessage}
	}
	if strings.TrimSpace(req.JobText) == "" {
		return &InvalidInputError{Field: "job_description", Message: missingInputMessage}
	}
	if req.TaskID == uuid.Nil {
		return ErrNotFound
	}

	task, err := o.store.GetTask(ctx, req.TaskID, req.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return ErrNotFound
	}
	return nil
}

// Generate validates req, streams the model output to sink and, once the
// stream has completed, stores the gap analysis on the task. Generations on
// the same task run one at a time.
//
// Errors before the first increment leave sink untouched. After that, an
// *UpstreamError or ErrCancelled means the output is incomplete and nothing
// was stored.
func (o *Orchestrator) Generate(ctx context.Context, req Request, sink Sink) (*Outcome, error) {
	if err := o.Validate(ctx, req); err != nil {
		return nil, err
	}

	release, err := o.locks.Acquire(ctx, req.TaskID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	defer release()

	log := o.logger.With(
		zap.String("task_id", req.TaskID.String()),
		zap.String("owner_id", req.OwnerID.String()),
	)

	system, user, err := prompts.Tailoring(req.ProfileText, req.JobText)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	log.Info("generation started", zap.String("model", o.streamer.Model()))
	o.publish(ctx, req, events.GenerationStarted, nil)

	stream, err := o.streamer.Stream(ctx, llm.Request{System: system, User: user})
	if err != nil {
		return nil, o.fail(ctx, req, log, o.classify(ctx, err))
	}
	defer stream.Close()

	var sinkErr error
	agg := streaming.NewAggregator(func(delta string) error {
		if err := sink.Write(delta); err != nil {
			sinkErr = err
			return err
		}
		return nil
	})

	for {
		if err := ctx.Err(); err != nil {
			return nil, o.fail(ctx, req, log, fmt.Errorf("%w: %v", ErrCancelled, err))
		}

		delta, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, o.fail(ctx, req, log, o.classify(ctx, err))
		}
		if err := agg.Push(delta); err != nil {
			return nil, o.fail(ctx, req, log, fmt.Errorf("%w: %v", ErrCancelled, sinkErr))
		}
	}

	out := &Outcome{Text: agg.Text(), Chunks: agg.Chunks()}
	log.Info("stream completed", zap.Int("bytes", agg.Len()), zap.Int("chunks", out.Chunks))

	out.Gaps, out.GapsFound = sections.Gaps(out.Text)
	if out.GapsFound {
		if err := o.persist(ctx, req, out.Gaps); err != nil {
			out.PersistErr = err
			log.Error("failed to save gaps", zap.Error(err))
			o.publish(ctx, req, events.GapsSaveFailed, map[string]string{"error": err.Error()})
		} else {
			out.GapsSaved = true
			log.Info("gaps saved", zap.Int("length", len(out.Gaps)))
			o.publish(ctx, req, events.GapsSaved, nil)
		}
	}

	o.publish(ctx, req, events.GenerationCompleted, map[string]string{
		"bytes":      strconv.Itoa(len(out.Text)),
		"chunks":     strconv.Itoa(out.Chunks),
		"gaps_saved": strconv.FormatBool(out.GapsSaved),
	})
	return out, nil
}

// persist writes the gaps even if the caller disconnects now; the stream
// itself already completed.
func (o *Orchestrator) persist(ctx context.Context, req Request, gaps string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.persistTimeout)
	defer cancel()

	if err := o.store.SetTaskGaps(ctx, req.TaskID, req.OwnerID, gaps); err != nil {
		return &PersistenceError{TaskID: req.TaskID, Cause: err}
	}
	return nil
}

func (o *Orchestrator) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return &UpstreamError{Cause: err}
}

func (o *Orchestrator) fail(ctx context.Context, req Request, log *zap.Logger, err error) error {
	if errors.Is(err, ErrCancelled) {
		log.Warn("generation cancelled by client", zap.Error(err))
	} else {
		log.Warn("generation failed", zap.Error(err))
	}
	o.publish(ctx, req, events.GenerationFailed, map[string]string{"error": err.Error()})
	return err
}

func (o *Orchestrator) publish(ctx context.Context, req Request, typ events.Type, detail map[string]string) {
	ev := events.Event{
		Type:   typ,
		TaskID: req.TaskID,
		UserID: req.OwnerID,
		At:     o.now().UTC(),
		Detail: detail,
	}
	if err := o.publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		o.logger.Warn("failed to publish event", zap.String("type", string(typ)), zap.Error(err))
	}
}
