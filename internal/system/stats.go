package system

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// workerMemory: примерный объём памяти на одну задачу пакетного режима
// (кадры, кэш доски, буферы ffmpeg).
const workerMemory = 256 << 20

// HostStats: снимок состояния машины для отчёта о производительности.
type HostStats struct {
	LogicalCPUs  int
	MemTotal     uint64
	MemAvailable uint64
	Load1        float64
}

// CollectHostStats собирает статистику через gopsutil. Ошибки отдельных
// источников не фатальны: недоступные поля остаются нулевыми.
func CollectHostStats(ctx context.Context) HostStats {
	var s HostStats

	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		s.LogicalCPUs = n
	} else {
		s.LogicalCPUs = runtime.NumCPU()
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		s.MemTotal = vm.Total
		s.MemAvailable = vm.Available
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		s.Load1 = avg.Load1
	}
	return s
}

// DefaultWorkers подбирает число параллельных задач: половина логических
// ядер, но не больше, чем позволяет свободная память.
func (s HostStats) DefaultWorkers() int {
	workers := s.LogicalCPUs / 2
	if s.MemAvailable > 0 {
		if byMem := int(s.MemAvailable / workerMemory); byMem < workers {
			workers = byMem
		}
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

func (s HostStats) String() string {
	return fmt.Sprintf("CPU: %d | RAM: %.1f/%.1f GB свободно | Load: %.2f",
		s.LogicalCPUs, float64(s.MemAvailable)/(1<<30), float64(s.MemTotal)/(1<<30), s.Load1)
}
