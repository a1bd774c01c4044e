package saga

import (
	"context"
	"sync"

	"forem-reader/internal/model"
	"forem-reader/internal/state"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DataAccess is the part of the data access layer the orchestrator drives.
type DataAccess interface {
	GetArticles(ctx context.Context, filter model.FilterParams) ([]model.Article, error)
	GetArticleDetail(ctx context.Context, id int) (model.Article, bool)
}

type Stream string

const (
	StreamList   Stream = "list"
	StreamDetail Stream = "detail"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
)

type streamState struct {
	status Status
	token  uuid.UUID
	cancel context.CancelFunc
}

// Orchestrator turns request actions into data access calls and feeds the
// outcome back into the store. Only the most recent request of each stream
// is honoured: a newer request cancels the older call, and a result whose
// token is no longer current is dropped before it reaches the reducer.
type Orchestrator struct {
	data   DataAccess
	store  *state.Store
	logger *zap.Logger

	baseCtx context.Context
	stop    context.CancelFunc
	results chan state.Action
	wg      sync.WaitGroup

	mu      sync.Mutex
	streams map[Stream]*streamState
	stopped bool
}

// New attaches an orchestrator to st. Results are applied once Start runs.
func New(data DataAccess, st *state.Store, logger *zap.Logger) *Orchestrator {
	baseCtx, stop := context.WithCancel(context.Background())
	o := &Orchestrator{
		data:    data,
		store:   st,
		logger:  logger,
		baseCtx: baseCtx,
		stop:    stop,
		results: make(chan state.Action),
		streams: map[Stream]*streamState{
			StreamList:   {status: StatusIdle},
			StreamDetail: {status: StatusIdle},
		},
	}
	st.Use(o.middleware)
	return o
}

// Start applies results in arrival order until ctx is cancelled, then
// cancels in-flight calls and waits for them to return.
func (o *Orchestrator) Start(ctx context.Context) {
	o.logger.Info("Orchestrator started")
	defer func() {
		o.mu.Lock()
		o.stopped = true
		o.mu.Unlock()
		o.stop()
		o.wg.Wait()
		o.logger.Info("Orchestrator stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case action := <-o.results:
			o.store.Dispatch(action)
		}
	}
}

// Status reports whether a stream has a request in flight.
func (o *Orchestrator) Status(stream Stream) Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.streams[stream]; ok {
		return s.status
	}
	return StatusIdle
}

// middleware runs inside the store's dispatch critical section, so taking a
// request and checking a result's currency cannot interleave.
func (o *Orchestrator) middleware(action state.Action) (state.Action, bool) {
	switch a := action.(type) {
	case state.ListRequested:
		filter := a.Filter.Normalize()
		a.Filter = filter
		a.Token = o.begin(StreamList, func(ctx context.Context, token uuid.UUID) state.Action {
			return o.fetchList(ctx, filter, token)
		})
		return a, true

	case state.DetailRequested:
		id := a.ID
		a.Token = o.begin(StreamDetail, func(ctx context.Context, token uuid.UUID) state.Action {
			return o.fetchDetail(ctx, id, token)
		})
		return a, true

	case state.ListSucceeded:
		return a, o.finish(StreamList, a.Token, a.Type())
	case state.ListFailed:
		return a, o.finish(StreamList, a.Token, a.Type())
	case state.DetailSucceeded:
		return a, o.finish(StreamDetail, a.Token, a.Type())
	case state.DetailFailed:
		return a, o.finish(StreamDetail, a.Token, a.Type())
	}
	return action, true
}

// begin supersedes whatever the stream was doing and starts call.
func (o *Orchestrator) begin(stream Stream, call func(context.Context, uuid.UUID) state.Action) uuid.UUID {
	token := uuid.New()
	callCtx, cancel := context.WithCancel(o.baseCtx)

	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		cancel()
		return token
	}
	s := o.streams[stream]
	if s.status == StatusPending && s.cancel != nil {
		o.logger.Debug("Superseding in-flight request",
			zap.String("stream", string(stream)),
			zap.String("token", s.token.String()))
		s.cancel()
	}
	s.status = StatusPending
	s.token = token
	s.cancel = cancel
	o.wg.Add(1)
	o.mu.Unlock()

	go func() {
		defer o.wg.Done()
		action := call(callCtx, token)
		select {
		case o.results <- action:
		case <-o.baseCtx.Done():
		}
	}()
	return token
}

// finish accepts a result only if it belongs to the stream's current request.
func (o *Orchestrator) finish(stream Stream, token uuid.UUID, actionType string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.streams[stream]
	if s.status != StatusPending || s.token != token {
		o.logger.Debug("Dropping superseded result",
			zap.String("stream", string(stream)),
			zap.String("type", actionType),
			zap.String("token", token.String()))
		return false
	}
	s.status = StatusIdle
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return true
}

func (o *Orchestrator) fetchList(ctx context.Context, filter model.FilterParams, token uuid.UUID) state.Action {
	articles, err := o.data.GetArticles(ctx, filter)
	if err != nil {
		return state.ListFailed{Filter: filter, Message: err.Error(), Token: token}
	}
	return state.ListSucceeded{Filter: filter, Articles: articles, Token: token}
}

// fetchDetail always reports success; a missing article is Found=false.
func (o *Orchestrator) fetchDetail(ctx context.Context, id int, token uuid.UUID) state.Action {
	article, ok := o.data.GetArticleDetail(ctx, id)
	return state.DetailSucceeded{ID: id, Article: article, Found: ok, Token: token}
}
