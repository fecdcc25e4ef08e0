package session

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/redscorpix/npf-sub003/pkg/dom"
	"github.com/redscorpix/npf-sub003/pkg/incdom"
	"github.com/redscorpix/npf-sub003/pkg/metrics"
	"github.com/redscorpix/npf-sub003/pkg/protocol"
	"github.com/redscorpix/npf-sub003/pkg/vdom"
	"github.com/redscorpix/npf-sub003/pkg/vtest"
)

func view(title string, items ...string) *vdom.VNode {
	return vdom.Div(vdom.Class("app"),
		vdom.H1(title),
		vdom.Ul(vdom.Range(items, func(item string, _ int) *vdom.VNode {
			return vdom.Li(vdom.Key(item), item)
		})),
	)
}

func mustHTML(t *testing.T, s *Session) string {
	t.Helper()
	out, err := s.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	return out
}

func TestApplySequencesFrames(t *testing.T) {
	s := New(dom.NewContainer("div"), WithTracer(noop.NewTracerProvider().Tracer("test")))
	mirror := protocol.NewMirror(dom.NewContainer("div"))
	ctx := context.Background()

	for i, tree := range []*vdom.VNode{
		view("one", "a", "b"),
		view("two", "b", "a", "c"),
		view("two", "b", "a", "c"),
		view("three"),
	} {
		frame, err := s.Apply(ctx, tree)
		if err != nil {
			t.Fatalf("Apply %d: %v", i, err)
		}
		if frame.Seq != uint64(i+1) {
			t.Errorf("frame %d: seq = %d", i, frame.Seq)
		}
		if err := mirror.Apply(frame); err != nil {
			t.Fatalf("mirror.Apply %d: %v", i, err)
		}
		got, _ := dom.InnerHTML(mirror.Root())
		if want := mustHTML(t, s); got != want {
			t.Errorf("frame %d: mirror = %s, want %s", i, got, want)
		}
	}

	if s.Seq() != 4 {
		t.Errorf("Seq() = %d, want 4", s.Seq())
	}
	if got, want := mustHTML(t, s), `<div class="app"><h1>three</h1><ul></ul></div>`; got != want {
		t.Errorf("HTML() = %s, want %s", got, want)
	}
}

func TestApplyUnchangedTreeIsEmpty(t *testing.T) {
	s := New(dom.NewContainer("div"))
	ctx := context.Background()

	if _, err := s.Apply(ctx, view("x", "a")); err != nil {
		t.Fatal(err)
	}
	frame, err := s.Apply(ctx, view("x", "a"))
	if err != nil {
		t.Fatal(err)
	}
	if len(frame.Mutations) != 0 {
		t.Errorf("got %d mutations, want 0: %v", len(frame.Mutations), frame.Mutations)
	}
	if frame.Seq != 2 {
		t.Errorf("seq = %d, want 2", frame.Seq)
	}
}

func TestSnapshotRebuildsMirror(t *testing.T) {
	container := dom.NewContainer("div")
	if err := dom.ParseInto(container, `<p id="intro">hello</p>`); err != nil {
		t.Fatal(err)
	}
	s := New(container)
	ctx := context.Background()

	if _, err := s.Apply(ctx, view("snap", "a", "b")); err != nil {
		t.Fatal(err)
	}

	mirror := protocol.NewMirror(dom.NewContainer("div"))
	if err := mirror.Load(s.Snapshot()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, _ := dom.InnerHTML(mirror.Root())
	if want := mustHTML(t, s); got != want {
		t.Fatalf("mirror = %s, want %s", got, want)
	}

	frame, err := s.Apply(ctx, view("snap", "b"))
	if err != nil {
		t.Fatal(err)
	}
	if err := mirror.Apply(frame); err != nil {
		t.Fatalf("Apply after snapshot: %v", err)
	}
	vtest.ExpectHTML(t, mirror.Root(), mustHTML(t, s))
}

func TestApplyErrorKeepsMirrorInStep(t *testing.T) {
	s := New(dom.NewContainer("div"))
	mirror := protocol.NewMirror(dom.NewContainer("div"))
	ctx := context.Background()

	frame, err := s.Apply(ctx, vdom.Fragment(vdom.P("a"), vdom.Div(vdom.Key("x"))))
	if err != nil {
		t.Fatal(err)
	}
	if err := mirror.Apply(frame); err != nil {
		t.Fatal(err)
	}

	frame, err = s.Apply(ctx, vdom.Fragment(vdom.P("b"), vdom.Span(vdom.Key("x"))))
	if incdom.ErrorCode(err) != incdom.CodeKeyedTagMismatch {
		t.Fatalf("err = %v, want %s", err, incdom.CodeKeyedTagMismatch)
	}
	if frame == nil || len(frame.Mutations) == 0 {
		t.Fatal("expected the mutations made before the error")
	}
	if err := mirror.Apply(frame); err != nil {
		t.Fatalf("mirror.Apply: %v", err)
	}
	got, _ := dom.InnerHTML(mirror.Root())
	if want := mustHTML(t, s); got != want {
		t.Errorf("mirror = %s, want %s", got, want)
	}
}

func TestApplyErrorWithoutMutations(t *testing.T) {
	s := New(dom.NewContainer("div"))
	ctx := context.Background()

	if _, err := s.Apply(ctx, vdom.Div(vdom.Key("x"))); err != nil {
		t.Fatal(err)
	}
	frame, err := s.Apply(ctx, vdom.Span(vdom.Key("x")))
	if err == nil {
		t.Fatal("expected error")
	}
	if frame != nil {
		t.Errorf("frame = %v, want nil", frame)
	}
	if s.Seq() != 1 {
		t.Errorf("Seq() = %d, want 1", s.Seq())
	}
}

func TestApplyCanceledContext(t *testing.T) {
	s := New(dom.NewContainer("div"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Apply(ctx, view("x"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if mustHTML(t, s) != "" {
		t.Error("canceled Apply must not touch the container")
	}
}

func TestApplyRecordsMetrics(t *testing.T) {
	m := metrics.New(metrics.WithRegistry(prometheus.NewRegistry()))
	s := New(dom.NewContainer("div"), WithMetrics(m), WithID("fixed"))

	if s.ID != "fixed" {
		t.Errorf("ID = %q, want fixed", s.ID)
	}
	if _, err := s.Apply(context.Background(), view("m", "a")); err != nil {
		t.Fatal(err)
	}
}

func TestNewAssignsUniqueIDs(t *testing.T) {
	a := New(dom.NewContainer("div"))
	b := New(dom.NewContainer("div"))
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("IDs %q and %q should be distinct and non-empty", a.ID, b.ID)
	}
}

func TestCloseStopsApply(t *testing.T) {
	s := New(dom.NewContainer("div"))
	if _, err := s.Apply(context.Background(), view("a")); err != nil {
		t.Fatal(err)
	}

	s.Close()
	s.Close()

	select {
	case <-s.Done():
	default:
		t.Fatal("Done() not closed after Close")
	}
	if _, err := s.Apply(context.Background(), view("b")); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("err = %v, want ErrSessionClosed", err)
	}
	if s.Seq() != 1 {
		t.Errorf("Seq() = %d, want 1", s.Seq())
	}
}
