package observable

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/fxsml/rxpipe/internal/logging"
)

func TestMain(m *testing.M) {
	logging.SetDefaultLogger(logging.Discard())
	goleak.VerifyTestMain(m)
}

const waitTimeout = time.Second

// countingRecorder implements Recorder for assertions.
type countingRecorder struct {
	mu         sync.Mutex
	emitted    int
	panicked   int
	dispatched int
	dropped    map[string]int
	terminated []State
}

func (r *countingRecorder) Emitted(string) {
	r.mu.Lock()
	r.emitted++
	r.mu.Unlock()
}

func (r *countingRecorder) Dropped(_, reason string) {
	r.mu.Lock()
	if r.dropped == nil {
		r.dropped = make(map[string]int)
	}
	r.dropped[reason]++
	r.mu.Unlock()
}

func (r *countingRecorder) Terminated(_ string, state State) {
	r.mu.Lock()
	r.terminated = append(r.terminated, state)
	r.mu.Unlock()
}

func (r *countingRecorder) SubscriberPanicked(string) {
	r.mu.Lock()
	r.panicked++
	r.mu.Unlock()
}

func (r *countingRecorder) Dispatched(string, time.Duration) {
	r.mu.Lock()
	r.dispatched++
	r.mu.Unlock()
}
