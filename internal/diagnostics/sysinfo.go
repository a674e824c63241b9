package diagnostics

import (
	"runtime"
	"strings"

	"github.com/jaypipes/ghw"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemInfo is a best-effort snapshot of host state at fault time.
type SystemInfo struct {
	CPUThreads int      `json:"cpu_threads"`
	Goroutines int      `json:"goroutines"`
	MemTotalMB float64  `json:"mem_total_mb"`
	MemUsedMB  float64  `json:"mem_used_mb"`
	MemPercent float64  `json:"mem_percent"`
	LoadAvg1   float64  `json:"load_avg_1"`
	LoadAvg5   float64  `json:"load_avg_5"`
	LoadAvg15  float64  `json:"load_avg_15"`
	GPUs       []string `json:"gpus,omitempty"`
}

// CollectSystemInfo gathers the snapshot. Every probe is optional; fields
// stay zero when a source is unavailable on this host.
func CollectSystemInfo() SystemInfo {
	info := SystemInfo{
		Goroutines: runtime.NumGoroutine(),
	}

	if threads, err := cpu.Counts(true); err == nil {
		info.CPUThreads = threads
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemTotalMB = float64(vm.Total) / 1024 / 1024
		info.MemUsedMB = float64(vm.Used) / 1024 / 1024
		info.MemPercent = vm.UsedPercent
	}
	if avg, err := load.Avg(); err == nil {
		info.LoadAvg1 = avg.Load1
		info.LoadAvg5 = avg.Load5
		info.LoadAvg15 = avg.Load15
	}
	info.GPUs = gpuNames()

	return info
}

func gpuNames() []string {
	gpu, err := ghw.GPU()
	if err != nil || gpu == nil {
		return nil
	}
	var names []string
	for _, card := range gpu.GraphicsCards {
		name := ""
		if card.DeviceInfo != nil {
			switch {
			case card.DeviceInfo.Vendor != nil && card.DeviceInfo.Product != nil:
				name = strings.TrimSpace(card.DeviceInfo.Vendor.Name + " " + card.DeviceInfo.Product.Name)
			case card.DeviceInfo.Product != nil:
				name = strings.TrimSpace(card.DeviceInfo.Product.Name)
			case card.DeviceInfo.Vendor != nil:
				name = strings.TrimSpace(card.DeviceInfo.Vendor.Name)
			}
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
