package domain

import "sync"

// SampleAccumulator keeps running sums of every metric between publications.
// Add and Drain share one mutex so that read-and-reset is atomic with respect
// to a concurrent Add.
type SampleAccumulator struct {
	mu          sync.Mutex
	cpuSum      float64
	tempSum     float64
	diskFreeSum float64
	count       int
}

func NewSampleAccumulator() *SampleAccumulator {
	return &SampleAccumulator{}
}

// Add folds one sample into the running sums.
func (a *SampleAccumulator) Add(s Sample) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cpuSum += s.CPUPercent
	a.tempSum += s.TemperatureCelsius
	a.diskFreeSum += s.DiskFreeGiB
	a.count++
}

// Drain returns the mean of every sample added since the last drain and
// resets the accumulator. With no pending samples it reports false and leaves
// the state untouched.
func (a *SampleAccumulator) Drain() (Averages, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.count == 0 {
		return Averages{}, false
	}

	n := float64(a.count)
	avg := Averages{
		CPUPercent:         a.cpuSum / n,
		TemperatureCelsius: a.tempSum / n,
		DiskFreeGiB:        a.diskFreeSum / n,
		Samples:            a.count,
	}
	a.cpuSum, a.tempSum, a.diskFreeSum, a.count = 0, 0, 0, 0
	return avg, true
}

// Pending reports how many samples are waiting for the next drain.
func (a *SampleAccumulator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}
