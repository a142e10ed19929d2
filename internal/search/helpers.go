package search

import (
	"os"
	"runtime"
	"time"

	"github.com/beal-engine/search/internal/telemetry"
)

const engineName = "bealsearch-go"

func nowISO() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

func currentSystem() telemetry.System {
	host, _ := os.Hostname()
	return telemetry.System{
		Hostname: host,
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		CPUCount: runtime.NumCPU(),
		Engine:   engineName,
	}
}
