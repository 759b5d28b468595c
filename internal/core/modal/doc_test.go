package modal

import (
	"testing"
	"time"

	"github.com/whimsicalfrog/frogshop/pkg/clock"
)

const testBody Element = "body"

// fakeDoc is an in-memory Document.
type fakeDoc struct {
	active   Element
	attached map[Element]bool
	locked   bool
	lockOps  int
}

func newFakeDoc(elements ...Element) *fakeDoc {
	d := &fakeDoc{active: testBody, attached: map[Element]bool{testBody: true}}
	for _, el := range elements {
		d.attached[el] = true
	}
	return d
}

func (d *fakeDoc) ActiveElement() Element      { return d.active }
func (d *fakeDoc) Focus(el Element)            { d.active = el }
func (d *fakeDoc) Contains(el Element) bool    { return d.attached[el] }
func (d *fakeDoc) Body() Element               { return testBody }
func (d *fakeDoc) SetScrollLocked(locked bool) { d.locked = locked; d.lockOps++ }

func newTestCoordinator(t *testing.T, doc *fakeDoc) (*Coordinator, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(time.Unix(0, 0))
	return NewCoordinator(doc, WithClock(fake)), fake
}

func elements(els ...Element) func() []Element {
	return func() []Element { return els }
}
