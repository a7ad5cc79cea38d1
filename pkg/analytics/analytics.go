package analytics

import "sync"

// Analytics tracks the success rate of the most recent requests in a fixed size window.
type Analytics struct {
	window  []bool
	next    int
	filled  int
	success int

	mutex sync.RWMutex
}

func NewAnalytics(requests int) *Analytics {
	if requests < 1 {
		requests = 1
	}
	return &Analytics{
		window: make([]bool, requests),
	}
}

// GetSuccessRate returns 1 until the window has been filled once, so the first
// failures after startup don't get reported as an alert.
func (a *Analytics) GetSuccessRate() float32 {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	if a.filled != len(a.window) {
		return 1
	}

	return float32(a.success) / float32(a.filled)
}

// Requests returns how many requests the current rate is based on.
func (a *Analytics) Requests() int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.filled
}

func (a *Analytics) Success() {
	a.Record(true)
}

func (a *Analytics) Failure() {
	a.Record(false)
}

func (a *Analytics) Record(success bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.filled == len(a.window) {
		// push the oldest request off
		if a.window[a.next] {
			a.success--
		}
	} else {
		a.filled++
	}

	if success {
		a.success++
	}

	if a.success < 0 {
		panic("internal analytics success count is < 0")
	}

	a.window[a.next] = success
	a.next = (a.next + 1) % len(a.window)
}
