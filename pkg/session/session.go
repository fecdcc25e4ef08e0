package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/redscorpix/npf-sub003/pkg/dom"
	"github.com/redscorpix/npf-sub003/pkg/incdom"
	"github.com/redscorpix/npf-sub003/pkg/metrics"
	"github.com/redscorpix/npf-sub003/pkg/protocol"
	"github.com/redscorpix/npf-sub003/pkg/vdom"
)

const tracerName = "incdom"

// Session is one live tree. Apply and Snapshot may be called from several
// goroutines; they are serialized.
type Session struct {
	// ID is the unique session identifier.
	ID string

	// CreatedAt is when the session was created.
	CreatedAt time.Time

	mu         sync.Mutex
	container  *html.Node
	patcher    *incdom.Patcher
	recorder   *protocol.Recorder
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	logger     *slog.Logger
	assertions bool
	seq        uint64
	lastActive time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session ID. Default: a random UUID.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.ID = id
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records patches and mutations to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithTracer sets the tracer used for patch spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Session) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithAssertions turns the patcher's protocol checks on or off.
func WithAssertions(enabled bool) Option {
	return func(s *Session) {
		s.assertions = enabled
	}
}

// New creates a session over container. Existing children of container are
// adopted on the first Apply and reported by Snapshot.
func New(container *html.Node, opts ...Option) *Session {
	now := time.Now()
	s := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		container:  container,
		recorder:   protocol.NewRecorder(container),
		tracer:     otel.Tracer(tracerName),
		logger:     slog.Default(),
		assertions: true,
		lastActive: now,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "session", "session_id", s.ID)

	popts := []incdom.Option{
		incdom.WithLogger(s.logger),
		incdom.WithAssertions(s.assertions),
		incdom.WithObserver(s.recorder),
	}
	if s.metrics != nil {
		popts = append(popts, incdom.WithObserver(s.metrics))
	}
	s.patcher = incdom.New(popts...)
	return s
}

// Apply patches the container to match tree and returns the mutations as
// the next frame. A frame with no mutations is still sequenced. Apply
// returns ErrSessionClosed once the session is closed.
//
// When the patch fails part way, the mutations made before the failure are
// still returned in a frame, together with the error, so a mirror stays in
// step with the container.
func (s *Session) Apply(ctx context.Context, tree *vdom.VNode) (*protocol.MutationsFrame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed() {
		return nil, ErrSessionClosed
	}

	ctx, span := s.tracer.Start(ctx, "incdom.patch",
		trace.WithAttributes(
			attribute.String("incdom.session_id", s.ID),
			attribute.Int64("incdom.seq", int64(s.seq+1)),
			attribute.Int("incdom.nodes", tree.Count()),
		),
	)
	defer span.End()

	start := time.Now()
	err := s.patcher.PatchInner(s.container, vdom.Patch(tree))
	elapsed := time.Since(start)
	s.metrics.RecordPatch(elapsed, err)
	s.lastActive = time.Now()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.WarnContext(ctx, "patch failed", "code", incdom.ErrorCode(err), "error", err)
		if s.recorder.Len() == 0 {
			return nil, err
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}

	s.seq++
	frame := s.recorder.Flush(s.seq)
	span.SetAttributes(attribute.Int("incdom.mutations", len(frame.Mutations)))
	s.logger.DebugContext(ctx, "patch applied",
		"seq", frame.Seq,
		"mutations", len(frame.Mutations),
		"duration", elapsed,
	)
	return frame, err
}

// Snapshot returns a frame that rebuilds the current container on an empty
// mirror. Its sequence number is that of the last applied frame.
func (s *Session) Snapshot() *protocol.MutationsFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &protocol.MutationsFrame{Seq: s.seq, Mutations: s.recorder.Snapshot()}
}

// HTML serializes the children of the container.
func (s *Session) HTML() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dom.InnerHTML(s.container)
}

// Seq returns the sequence number of the last frame.
func (s *Session) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// LastActive returns when the session last applied a patch.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close marks the session closed and releases anyone waiting on Done.
// It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Done is closed when the session is closed, either by its owner or by
// the manager (idle cleanup, shutdown).
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
