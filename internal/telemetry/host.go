// Package telemetry reports CPU, memory and OS facts about the host.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Sample is a raw reading from the host.
type Sample struct {
	Platform string
	Distro   string
	Release  string

	Cores       int
	LoadPercent float64

	MemTotal uint64
	MemFree  uint64
	MemUsed  uint64
}

// Probe takes a host reading.
type Probe interface {
	Sample(ctx context.Context) (Sample, error)
}

// HostProbe reads the local machine through gopsutil.
type HostProbe struct {
	// Window is how long CPU load is measured over.
	Window time.Duration
}

func NewHostProbe() *HostProbe {
	return &HostProbe{Window: 200 * time.Millisecond}
}

func (p *HostProbe) Sample(ctx context.Context) (Sample, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return Sample{}, fmt.Errorf("host info: %w", err)
	}
	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return Sample{}, fmt.Errorf("cpu count: %w", err)
	}
	load, err := cpu.PercentWithContext(ctx, p.Window, false)
	if err != nil {
		return Sample{}, fmt.Errorf("cpu load: %w", err)
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Sample{}, fmt.Errorf("memory: %w", err)
	}

	s := Sample{
		Platform: info.OS,
		Distro:   info.Platform,
		Release:  info.PlatformVersion,
		Cores:    cores,
		MemTotal: vm.Total,
		MemFree:  vm.Free,
		MemUsed:  vm.Used,
	}
	if len(load) > 0 {
		s.LoadPercent = load[0]
	}
	return s, nil
}

// Report is the JSON shape served at /performance.
type Report struct {
	OS struct {
		Platform string `json:"platform"`
		Distro   string `json:"distro"`
		Release  string `json:"release"`
	} `json:"os"`
	CPU struct {
		Cores int    `json:"cores"`
		Load  string `json:"load"`
	} `json:"cpu"`
	Memory struct {
		Total string `json:"total"`
		Free  string `json:"free"`
		Used  string `json:"used"`
	} `json:"memory"`
}

// NewReport formats a sample for display: load as a percentage and memory in GB.
func NewReport(s Sample) Report {
	var r Report
	r.OS.Platform = s.Platform
	r.OS.Distro = s.Distro
	r.OS.Release = s.Release
	r.CPU.Cores = s.Cores
	r.CPU.Load = fmt.Sprintf("%.2f%%", s.LoadPercent)
	r.Memory.Total = gigabytes(s.MemTotal)
	r.Memory.Free = gigabytes(s.MemFree)
	r.Memory.Used = gigabytes(s.MemUsed)
	return r
}

func gigabytes(b uint64) string {
	return fmt.Sprintf("%.2f GB", float64(b)/1024/1024/1024)
}
