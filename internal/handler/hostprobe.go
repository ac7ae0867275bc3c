package handler

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// hostProbe samples the OS side of the metrics stream from /proc. CPU
// utilization is a delta against the previous sample, so the probe keeps
// the last tick counts between calls. Not safe for concurrent use; the
// metrics stream owns one probe per process.
type hostProbe struct {
	model    string
	lastIdle uint64
	lastBusy uint64
}

func newHostProbe() *hostProbe {
	p := &hostProbe{model: cpuModelName()}
	// Seed the tick counters so the first sample covers a real window.
	p.lastIdle, p.lastBusy, _ = cpuTicks()
	return p
}

// cpuPercent returns utilization since the previous call.
func (p *hostProbe) cpuPercent() float64 {
	idle, busy, ok := cpuTicks()
	if !ok {
		return 0
	}
	if idle < p.lastIdle || busy < p.lastBusy {
		// Counters moved backward; rebase and report nothing this tick.
		p.lastIdle, p.lastBusy = idle, busy
		return 0
	}
	di := idle - p.lastIdle
	db := busy - p.lastBusy
	p.lastIdle, p.lastBusy = idle, busy

	if di+db == 0 {
		return 0
	}
	return float64(db) / float64(di+db) * 100
}

// cpuTicks reads the aggregate line of /proc/stat. Idle is the fourth
// column; everything else counts as busy.
func cpuTicks() (idle, busy uint64, ok bool) {
	raw, err := os.ReadFile("/proc/stat")
	if err != nil {
		return 0, 0, false
	}
	line, _, _ := strings.Cut(string(raw), "\n")
	cols := strings.Fields(line)
	if len(cols) < 5 || cols[0] != "cpu" {
		return 0, 0, false
	}
	for i, col := range cols[1:] {
		v, _ := strconv.ParseUint(col, 10, 64)
		if i == 3 {
			idle = v
		} else {
			busy += v
		}
	}
	return idle, busy, true
}

func cpuModelName() string {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return "unknown"
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if rest, found := strings.CutPrefix(sc.Text(), "model name"); found {
			_, val, _ := strings.Cut(rest, ":")
			return strings.TrimSpace(val)
		}
	}
	return "unknown"
}

// memUsage reads MemTotal and MemAvailable from /proc/meminfo.
func memUsage() (used, total uint64) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	var avail uint64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			total = kbField(line)
		case strings.HasPrefix(line, "MemAvailable:"):
			avail = kbField(line)
		}
		if total > 0 && avail > 0 {
			break
		}
	}
	if total >= avail {
		used = total - avail
	}
	return used, total
}

// processRSS reads VmRSS from /proc/self/status.
func processRSS() uint64 {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return 0
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.HasPrefix(sc.Text(), "VmRSS:") {
			return kbField(sc.Text())
		}
	}
	return 0
}

// kbField parses lines of the form "Name:   12345 kB" into bytes.
func kbField(line string) uint64 {
	cols := strings.Fields(line)
	if len(cols) < 2 {
		return 0
	}
	kb, _ := strconv.ParseUint(cols[1], 10, 64)
	return kb << 10
}

// fsUsage reports used and total bytes for the filesystem holding path.
func fsUsage(path string) (used, total uint64) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return 0, 0
	}
	bs := uint64(st.Bsize)
	total = st.Blocks * bs
	used = total - st.Bavail*bs
	return used, total
}

func loadAverages() (one, five, fifteen float64) {
	raw, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return
	}
	cols := strings.Fields(string(raw))
	if len(cols) < 3 {
		return
	}
	one, _ = strconv.ParseFloat(cols[0], 64)
	five, _ = strconv.ParseFloat(cols[1], 64)
	fifteen, _ = strconv.ParseFloat(cols[2], 64)
	return one, five, fifteen
}

func uptimeString(d time.Duration) string {
	secs := int(d.Seconds())
	days, secs := secs/86400, secs%86400
	hours, secs := secs/3600, secs%3600
	mins, secs := secs/60, secs%60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, mins, secs)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, mins, secs)
	default:
		return fmt.Sprintf("%dm %ds", mins, secs)
	}
}
