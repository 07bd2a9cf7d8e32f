package generation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/events"
	"github.com/jonathan/resume-tailor/internal/llm/llmtest"
)

type fakeStore struct {
	mu       sync.Mutex
	tasks    map[uuid.UUID]*db.Task
	getErr   error
	setErr   error
	setCalls int
}

func newFakeStore(tasks ...*db.Task) *fakeStore {
	s := &fakeStore{tasks: make(map[uuid.UUID]*db.Task)}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s
}

func (s *fakeStore) GetTask(_ context.Context, taskID, userID uuid.UUID) (*db.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	t, ok := s.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *fakeStore) SetTaskGaps(_ context.Context, taskID, userID uuid.UUID, gaps string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	t, ok := s.tasks[taskID]
	if !ok || t.UserID != userID {
		return db.ErrNoRows
	}
	t.Gaps = &gaps
	return nil
}

func (s *fakeStore) gaps(id uuid.UUID) *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[id].Gaps
}

type recordingSink struct {
	deltas []string
	err    error
}

func (r *recordingSink) Write(delta string) error {
	if r.err != nil {
		return r.err
	}
	r.deltas = append(r.deltas, delta)
	return nil
}

func setup(t *testing.T, chunks ...string) (*Orchestrator, *fakeStore, *llmtest.Streamer, *events.Memory, Request) {
	t.Helper()
	owner := uuid.New()
	task := &db.Task{ID: uuid.New(), UserID: owner, Name: "Backend", Company: "Acme"}
	store := newFakeStore(task)
	streamer := llmtest.New(chunks...)
	pub := &events.Memory{}
	o := New(store, streamer, pub, zap.NewNop())
	req := Request{OwnerID: owner, TaskID: task.ID, ProfileText: "Go developer", JobText: "Senior Go engineer"}
	return o, store, streamer, pub, req
}

func TestGenerate_StreamsAndPersistsGaps(t *testing.T) {
	chunks := []string{
		"<TAILORED_RES", "UME>\n## Summary\nGo dev\n</TAILORED_RESUME>\n",
		"<GAP_ANA", "LYSIS>\n- Kubernetes\n</GAP_", "ANALYSIS>",
	}
	o, store, streamer, pub, req := setup(t, chunks...)
	sink := &recordingSink{}

	out, err := o.Generate(context.Background(), req, sink)
	require.NoError(t, err)

	assert.Equal(t, chunks, sink.deltas, "deltas forwarded unmodified and in order")
	assert.Equal(t, strings.Join(chunks, ""), out.Text)
	assert.Equal(t, len(chunks), out.Chunks)
	assert.True(t, out.GapsFound)
	assert.True(t, out.GapsSaved)
	assert.NoError(t, out.PersistErr)

	require.NotNil(t, store.gaps(req.TaskID))
	assert.Equal(t, "- Kubernetes", *store.gaps(req.TaskID))
	assert.Equal(t, 1, store.setCalls)

	assert.Equal(t, []events.Type{events.GenerationStarted, events.GapsSaved, events.GenerationCompleted}, pub.Types())

	reqs := streamer.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "You are an expert resume writer and career coach.", reqs[0].System)
	assert.Contains(t, reqs[0].User, "<EXISTING_PROFILE>\nGo developer\n</EXISTING_PROFILE>")
	assert.Contains(t, reqs[0].User, "<JOB_DESCRIPTION>\nSenior Go engineer\n</JOB_DESCRIPTION>")
}

func TestGenerate_NoGapRegion(t *testing.T) {
	o, store, _, pub, req := setup(t, "<TAILORED_RESUME>x</TAILORED_RESUME>")

	out, err := o.Generate(context.Background(), req, &recordingSink{})
	require.NoError(t, err)

	assert.False(t, out.GapsFound)
	assert.False(t, out.GapsSaved)
	assert.Nil(t, store.gaps(req.TaskID))
	assert.Equal(t, 0, store.setCalls)
	assert.Equal(t, []events.Type{events.GenerationStarted, events.GenerationCompleted}, pub.Types())
}

func TestGenerate_BlankGapRegionNotPersisted(t *testing.T) {
	o, store, _, _, req := setup(t, "<GAP_ANALYSIS>   \n </GAP_ANALYSIS>")

	out, err := o.Generate(context.Background(), req, &recordingSink{})
	require.NoError(t, err)
	assert.False(t, out.GapsSaved)
	assert.Equal(t, 0, store.setCalls)
}

func TestGenerate_RejectsBeforeContactingService(t *testing.T) {
	o, store, streamer, _, req := setup(t, "never")

	otherOwner := req
	otherOwner.OwnerID = uuid.New()

	unknownTask := req
	unknownTask.TaskID = uuid.New()

	noOwner := req
	noOwner.OwnerID = uuid.Nil

	blankProfile := req
	blankProfile.ProfileText = "  \n\t"

	blankJob := req
	blankJob.JobText = ""

	tests := []struct {
		name  string
		req   Request
		check func(t *testing.T, err error)
	}{
		{"no owner", noOwner, func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnauthorized) }},
		{"blank profile", blankProfile, func(t *testing.T, err error) {
			var inv *InvalidInputError
			require.ErrorAs(t, err, &inv)
			assert.Equal(t, "existing_profile", inv.Field)
			assert.Equal(t, "Both profile and job description are required.", inv.Error())
		}},
		{"blank job", blankJob, func(t *testing.T, err error) {
			var inv *InvalidInputError
			require.ErrorAs(t, err, &inv)
			assert.Equal(t, "job_description", inv.Field)
		}},
		{"unknown task", unknownTask, func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNotFound) }},
		{"someone else's task", otherOwner, func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNotFound) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			out, err := o.Generate(context.Background(), tt.req, sink)
			assert.Nil(t, out)
			tt.check(t, err)
			assert.Empty(t, sink.deltas)
		})
	}

	assert.Empty(t, streamer.Requests())
	assert.Equal(t, 0, store.setCalls)
}

func TestGenerate_StorageLookupError(t *testing.T) {
	o, store, streamer, _, req := setup(t, "x")
	store.getErr = errors.New("connection refused")

	_, err := o.Generate(context.Background(), req, &recordingSink{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Empty(t, streamer.Requests())
}

func TestGenerate_UpstreamOpenFailure(t *testing.T) {
	o, store, streamer, pub, req := setup(t)
	streamer.OpenErr = errors.New("401 invalid api key")
	sink := &recordingSink{}

	out, err := o.Generate(context.Background(), req, sink)
	assert.Nil(t, out)

	var up *UpstreamError
	require.ErrorAs(t, err, &up)
	assert.EqualError(t, up.Cause, "401 invalid api key")
	assert.Empty(t, sink.deltas)
	assert.Equal(t, 0, store.setCalls)
	assert.Equal(t, []events.Type{events.GenerationStarted, events.GenerationFailed}, pub.Types())
}

func TestGenerate_MidStreamFailureSkipsPersistence(t *testing.T) {
	o, store, streamer, _, req := setup(t,
		"<TAILORED_RESUME>x</TAILORED_RESUME>",
		"<GAP_ANALYSIS>- AWS</GAP_ANALYSIS>",
		"trailing",
	)
	streamer.FailAfter = 2
	streamer.StreamErr = errors.New("connection reset")
	sink := &recordingSink{}

	_, err := o.Generate(context.Background(), req, sink)

	var up *UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Len(t, sink.deltas, 2, "partial output is not retracted")
	assert.Nil(t, store.gaps(req.TaskID), "gap region was complete but the stream was not")
	assert.Equal(t, 0, store.setCalls)
}

func TestGenerate_SinkFailureCancels(t *testing.T) {
	o, store, _, pub, req := setup(t, "<GAP_ANALYSIS>- AWS</GAP_ANALYSIS>")
	sink := &recordingSink{err: errors.New("broken pipe")}

	_, err := o.Generate(context.Background(), req, sink)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 0, store.setCalls)
	assert.Contains(t, pub.Types(), events.GenerationFailed)
}

func TestGenerate_ContextCancelledMidStream(t *testing.T) {
	o, store, streamer, _, req := setup(t, "<GAP_ANALYSIS>", "- AWS", "</GAP_ANALYSIS>")
	streamer.Block = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	sink := SinkFunc(func(string) error {
		cancel()
		return nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := o.Generate(ctx, req, sink)
		done <- err
	}()
	streamer.Block <- struct{}{}

	err := <-done
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 0, store.setCalls)
}

func TestGenerate_PersistenceFailureDoesNotFailStream(t *testing.T) {
	o, store, _, pub, req := setup(t, "<GAP_ANALYSIS>- AWS</GAP_ANALYSIS>")
	store.setErr = errors.New("disk full")

	out, err := o.Generate(context.Background(), req, &recordingSink{})
	require.NoError(t, err)

	var perr *PersistenceError
	require.ErrorAs(t, out.PersistErr, &perr)
	assert.Equal(t, req.TaskID, perr.TaskID)
	assert.False(t, out.GapsSaved)
	assert.Equal(t, 1, store.setCalls)
	assert.Equal(t, []events.Type{events.GenerationStarted, events.GapsSaveFailed, events.GenerationCompleted}, pub.Types())
}

func TestGenerate_LaterWriteWinsInOrder(t *testing.T) {
	o, store, streamer, _, req := setup(t, "<GAP_ANALYSIS>first</GAP_ANALYSIS>")

	_, err := o.Generate(context.Background(), req, &recordingSink{})
	require.NoError(t, err)

	streamer.Chunks = []string{"<GAP_ANALYSIS>second</GAP_ANALYSIS>"}
	_, err = o.Generate(context.Background(), req, &recordingSink{})
	require.NoError(t, err)

	assert.Equal(t, "second", *store.gaps(req.TaskID))
	assert.Equal(t, 2, store.setCalls)
	assert.Equal(t, 0, o.locks.Len())
}

func TestErrors(t *testing.T) {
	cause := errors.New("boom")
	id := uuid.New()

	up := &UpstreamError{Cause: cause}
	assert.ErrorIs(t, up, cause)
	assert.Equal(t, "generation service failed: boom", up.Error())

	perr := &PersistenceError{TaskID: id, Cause: cause}
	assert.ErrorIs(t, perr, cause)
	assert.Equal(t, "failed to save gaps for task "+id.String()+": boom", perr.Error())
}
