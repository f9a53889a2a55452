// Package store persists spin runs under a data directory: one
// subdirectory per run holding metadata.json and trace.csv.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/spinsim/internal/session"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string    `json:"id"`
	Preset     string    `json:"preset"`
	Timestamp  time.Time `json:"timestamp"`
	Seed       int64     `json:"seed"`
	Power      float64   `json:"power"`
	FinalAngle float64   `json:"final_angle"`
	Landed     string    `json:"landed"`
	Drawn      string    `json:"drawn"`
	Payout     int       `json:"payout"`
	Steps      int       `json:"steps"`
	Duration   float64   `json:"duration"`
	Completed  bool      `json:"completed"`
}

var traceHeader = []string{"time", "outer_angle", "outer_velocity", "inner_angle", "inner_velocity"}

// Save writes the run's metadata and trace and returns its run id.
func (s *Store) Save(preset string, seed int64, res *session.Result) (string, error) {
	runID := fmt.Sprintf("spin_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Preset:     preset,
		Timestamp:  time.Now(),
		Seed:       seed,
		Power:      res.Power,
		FinalAngle: res.FinalAngle,
		Landed:     res.Landed.Label,
		Drawn:      res.Drawn.Label,
		Payout:     res.Drawn.Payout,
		Steps:      res.Steps,
		Duration:   res.Duration,
		Completed:  res.Completed,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trace.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(traceHeader); err != nil {
		return "", err
	}
	for _, f := range res.Trace {
		row := []string{
			strconv.FormatFloat(f.Time, 'f', 6, 64),
			strconv.FormatFloat(f.OuterAngle, 'f', 6, 64),
			strconv.FormatFloat(f.OuterVelocity, 'f', 6, 64),
			strconv.FormatFloat(f.InnerAngle, 'f', 6, 64),
			strconv.FormatFloat(f.InnerVelocity, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns metadata for every stored run. Directories without
// readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrace reads a run's trace back from trace.csv.
func (s *Store) LoadTrace(runID string) ([]session.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trace.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []session.Frame{}, nil
	}

	frames := make([]session.Frame, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < len(traceHeader) {
			continue
		}
		vals := make([]float64, len(traceHeader))
		ok := true
		for i := range vals {
			v, err := strconv.ParseFloat(record[i], 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		frames = append(frames, session.Frame{
			Time:          vals[0],
			OuterAngle:    vals[1],
			OuterVelocity: vals[2],
			InnerAngle:    vals[3],
			InnerVelocity: vals[4],
		})
	}

	return frames, nil
}
