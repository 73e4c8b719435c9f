package domain

import "time"

// Sample is one instantaneous reading of the host taken by the sampling loop.
type Sample struct {
	CPUPercent         float64   `json:"cpu_percent"`
	TemperatureCelsius float64   `json:"temperature_celsius"`
	DiskFreeGiB        float64   `json:"disk_free_gib"`
	Timestamp          time.Time `json:"ts"`
}

// Averages is the drained mean of every sample taken since the previous publication.
type Averages struct {
	CPUPercent         float64
	TemperatureCelsius float64
	DiskFreeGiB        float64
	Samples            int
}

// HostFacts are static identity facts published once at startup.
type HostFacts struct {
	OSVersion     string
	HardwareModel string
}
