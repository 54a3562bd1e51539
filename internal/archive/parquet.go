package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/Matttaylor8910/generals-events-sub000/internal/simulation"
)

const schemaVersion = "replay_score_v1"

// ScoreRow is one player's final standing in one simulated replay.
type ScoreRow struct {
	ReplayID string `parquet:"replay_id,dict"`
	Outcome  string `parquet:"outcome,dict"`
	Turns    int32  `parquet:"turns"`
	Name     string `parquet:"name,dict"`
	Rank     int32  `parquet:"rank"`
	Kills    int32  `parquet:"kills"`
	Points   int32  `parquet:"points"`
	Streak   bool   `parquet:"streak"`
}

// Rows flattens results into one row per player, ordered by replay then rank.
func Rows(results []*simulation.Result) []ScoreRow {
	var rows []ScoreRow
	for _, res := range results {
		for _, s := range res.Scores {
			rows = append(rows, ScoreRow{
				ReplayID: res.ReplayID,
				Outcome:  string(res.Outcome),
				Turns:    int32(res.Turns),
				Name:     s.Name,
				Rank:     int32(s.Rank),
				Kills:    int32(s.Kills),
				Points:   int32(s.Points),
				Streak:   s.Streak,
			})
		}
	}
	return rows
}

// WriteScores writes the score rows of results to outPath. The file only
// appears once it is complete.
func WriteScores(outPath string, results []*simulation.Result) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, Rows(results),
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaVersion),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// WriteBatch writes results to a new timestamped file in outDir and returns
// its path.
func WriteBatch(outDir string, results []*simulation.Result) (string, error) {
	name := fmt.Sprintf("scores_%d.parquet", time.Now().UnixNano())
	outPath := filepath.Join(outDir, name)
	if err := WriteScores(outPath, results); err != nil {
		return "", err
	}
	return outPath, nil
}

// ReadScores loads every row of a score archive.
func ReadScores(path string) ([]ScoreRow, error) {
	rows, err := parquet.ReadFile[ScoreRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return rows, nil
}
