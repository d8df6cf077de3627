package system

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open file limit, the asset loader and
// ffmpeg pipes can exhaust the default.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Failed to read file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Failed to raise file limit: %v", err)
	} else {
		fmt.Printf("[*] Open file limit raised to %d\n", rLimit.Cur)
	}
}

// Snapshot is a point-in-time view of host load, printed at startup
// and used to size the asset loader.
type Snapshot struct {
	CPUCores       int
	CPUUsage       float64
	TotalMemMB     uint64
	UsedMemPercent float64
}

// TakeSnapshot samples CPU and memory. Best effort: fields stay zero
// when a probe fails.
func TakeSnapshot() Snapshot {
	s := Snapshot{CPUCores: runtime.NumCPU()}

	if pct, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(pct) > 0 {
		s.CPUUsage = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.TotalMemMB = vm.Total / 1024 / 1024
		s.UsedMemPercent = vm.UsedPercent
	}
	return s
}

func (s Snapshot) String() string {
	return fmt.Sprintf("%d cores, %.0f%% cpu, %d MB ram (%.0f%% used)",
		s.CPUCores, s.CPUUsage, s.TotalMemMB, s.UsedMemPercent)
}

// RecommendedWorkers sizes the parallel asset fetch. Network bound, so
// more than cores is fine, but a loaded host gets throttled back.
func (s Snapshot) RecommendedWorkers() int {
	n := s.CPUCores * 2
	if s.CPUUsage > 80 || s.UsedMemPercent > 90 {
		n = s.CPUCores
	}
	if n < 2 {
		n = 2
	}
	if n > 16 {
		n = 16
	}
	return n
}

// GetBestH264Encoder picks the fastest available h264 encoder:
// VideoToolbox on macOS, NVENC with an NVIDIA card, libx264 otherwise.
func GetBestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name
		}
	}
	return "libx264"
}
