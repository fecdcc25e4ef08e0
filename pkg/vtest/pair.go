package vtest

import (
	"testing"

	"golang.org/x/net/html"

	"github.com/redscorpix/npf-sub003/pkg/dom"
	"github.com/redscorpix/npf-sub003/pkg/incdom"
	"github.com/redscorpix/npf-sub003/pkg/protocol"
	"github.com/redscorpix/npf-sub003/pkg/vdom"
)

// Pair is a source tree and a mirror kept in step through encoded frames.
type Pair struct {
	Source   *html.Node
	Patcher  *incdom.Patcher
	Recorder *protocol.Recorder
	Mirror   *protocol.Mirror

	// Counter counts the mutations of the last Patch.
	Counter *incdom.MutationCounter

	t   testing.TB
	seq uint64
}

// NewPair creates a pair over two empty div containers. opts are passed to
// the source patcher.
func NewPair(t testing.TB, opts ...incdom.Option) *Pair {
	source := dom.NewContainer("div")
	rec := protocol.NewRecorder(source)
	counter := incdom.NewMutationCounter()
	opts = append([]incdom.Option{incdom.WithObserver(rec), incdom.WithObserver(counter)}, opts...)
	return &Pair{
		Source:   source,
		Patcher:  incdom.New(opts...),
		Recorder: rec,
		Mirror:   protocol.NewMirror(dom.NewContainer("div")),
		Counter:  counter,
		t:        t,
	}
}

// Patch renders nodes into the source, ships the frame to the mirror and
// checks that both trees serialize the same. It returns the decoded frame.
func (p *Pair) Patch(nodes ...*vdom.VNode) *protocol.MutationsFrame {
	p.t.Helper()
	p.Counter.Reset()
	if err := p.Patcher.PatchInner(p.Source, vdom.Patch(nodes...)); err != nil {
		p.t.Fatalf("PatchInner: %v", err)
	}
	p.seq++
	data := protocol.EncodeMutations(p.Recorder.Flush(p.seq))
	f, err := protocol.DecodeMutations(data)
	if err != nil {
		p.t.Fatalf("DecodeMutations: %v", err)
	}
	if err := p.Mirror.Apply(f); err != nil {
		p.t.Fatalf("Mirror.Apply: %v", err)
	}

	want, _ := dom.InnerHTML(p.Source)
	got, _ := dom.InnerHTML(p.Mirror.Root())
	if got != want {
		p.t.Errorf("mirror = %s\nsource = %s", got, want)
	}
	return f
}

// HTML returns the source's inner HTML.
func (p *Pair) HTML() string {
	out, _ := dom.InnerHTML(p.Source)
	return out
}
