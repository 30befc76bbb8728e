package progress

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsInteractive(t *testing.T) {
	assert.False(t, IsInteractive(&bytes.Buffer{}))
}

func TestBar_DisabledWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, "pruning", 10)
	b.SetDirectory("/tmp/a")
	b.Increment()
	b.Finish()

	s := NewSpinner(&buf, "scanning")
	s.SetDirectory("/tmp/a")
	s.Increment()
	s.Finish()

	assert.Empty(t, buf.String())
}

func TestBar_EnabledRenders(t *testing.T) {
	var buf bytes.Buffer
	b := newCounted(&buf, "pruning", 4, true)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Increment()
		}()
	}
	wg.Wait()
	b.Finish()

	assert.Contains(t, buf.String(), "pruning")
}

func TestSpinner_EnabledRenders(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "scanning", true)
	s.SetDirectory("/tmp/photos")
	s.Increment()
	s.Finish()

	assert.NotEmpty(t, buf.String())
}
