package cli

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpinnerStop(t *testing.T) {
	s := newSpinner("Laying out graph.json...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()
	assert.False(t, s.Cancelled(), "Stop is not a context cancellation")

	// Repeated stops are harmless.
	s.Stop()
	s.StopWithSuccess("Layout complete")
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, "Laying out graph.json...")
	s.Start()

	cancel()
	time.Sleep(50 * time.Millisecond)
	assert.True(t, s.Cancelled())
	s.Stop()
}

func TestSpinnerSetMessage(t *testing.T) {
	s := newSpinner("Laying out 4 graphs...")
	s.Start()

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.SetMessage(fmt.Sprintf("Laying out 4 graphs... (%d done)", i+1))
		}()
	}
	wg.Wait()
	time.Sleep(200 * time.Millisecond)
	s.StopWithError("Layout failed")

	assert.Contains(t, s.message, "done)")
	assert.GreaterOrEqual(t, s.width, len("Laying out 4 graphs... (1 done)"))
}
