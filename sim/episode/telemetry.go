package episode

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/gzip"
)

// TelemetryDocument is the on-disk shape written at episode end (§6
// "Telemetry dumps").
type TelemetryDocument struct {
	Episode        int            `json:"episode"`
	Metrics        Metrics        `json:"metrics"`
	RobotSnapshots []RobotSnapshot `json:"robot_snapshots"`
	TaskEvents     []TaskEvent    `json:"task_events"`
	Heatmap        []HeatmapEntry `json:"heatmap"`
}

// BuildTelemetryDocument assembles the document for the just-finished
// episode from the logger's accumulated state.
func (d *Driver) BuildTelemetryDocument(episodeNumber int) TelemetryDocument {
	return TelemetryDocument{
		Episode:        episodeNumber,
		Metrics:        d.Logger.Metrics(),
		RobotSnapshots: d.Logger.RobotSnapshots,
		TaskEvents:     d.Logger.TaskEvents,
		Heatmap:        d.Logger.HeatmapList(),
	}
}

// WriteTelemetry writes doc as JSON to path. If gzipCompress is true the
// file is gzip-compressed (path should carry a .gz suffix by convention).
func WriteTelemetry(doc TelemetryDocument, path string, gzipCompress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("episode: create telemetry file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if !gzipCompress {
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("episode: write telemetry: %w", err)
		}
		return nil
	}

	gz := gzip.NewWriter(f)
	defer gz.Close()
	if err := json.NewEncoder(gz).Encode(doc); err != nil {
		return fmt.Errorf("episode: write compressed telemetry: %w", err)
	}
	return gz.Close()
}
