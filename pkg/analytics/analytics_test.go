package analytics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuccessRateNeedsFullWindow(t *testing.T) {
	a := NewAnalytics(4)

	a.Failure()
	a.Failure()
	require.Equal(t, float32(1), a.GetSuccessRate())
	require.Equal(t, 2, a.Requests())

	a.Success()
	a.Success()
	require.Equal(t, float32(0.5), a.GetSuccessRate())
}

func TestSuccessRateSlides(t *testing.T) {
	a := NewAnalytics(2)

	a.Failure()
	a.Failure()
	require.Equal(t, float32(0), a.GetSuccessRate())

	a.Success()
	require.Equal(t, float32(0.5), a.GetSuccessRate())

	a.Success()
	require.Equal(t, float32(1), a.GetSuccessRate())
	require.Equal(t, 2, a.Requests())
}

func TestWindowOfAtLeastOne(t *testing.T) {
	a := NewAnalytics(0)
	a.Failure()
	require.Equal(t, float32(0), a.GetSuccessRate())
}

func TestConcurrentRecords(t *testing.T) {
	a := NewAnalytics(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				a.Success()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, float32(1), a.GetSuccessRate())
	require.Equal(t, 100, a.Requests())
}
