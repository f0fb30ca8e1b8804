package run

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"titanicml/pkg/config"
	"titanicml/pkg/dataset"
	"titanicml/pkg/pipeline"
)

// Prepare runs only the preprocessing stages and writes the resulting
// feature matrix, label column last, to a CSV at outPath.
func Prepare(cfg config.Config, outPath string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	frame, err := dataset.ReadCSV(cfg.Data, log)
	if err != nil {
		return err
	}
	prep := pipeline.New(Stages(cfg, frame)...)
	prepared, err := prep.Fit(frame)
	if err != nil {
		return err
	}
	labels, err := prepared.Floats(cfg.LabelCol)
	if err != nil {
		return err
	}

	file, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("run: create %s: %w", outPath, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := append(append([]string(nil), prepared.FeatureNames...), cfg.LabelCol)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("run: write %s: %w", outPath, err)
	}
	record := make([]string, len(header))
	for i, row := range prepared.Features {
		for j, v := range row {
			record[j] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		record[len(record)-1] = strconv.FormatFloat(labels[i], 'f', -1, 64)
		if err := w.Write(record); err != nil {
			return fmt.Errorf("run: write %s: %w", outPath, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("run: flush %s: %w", outPath, err)
	}
	log.Info("wrote prepared dataset",
		zap.String("path", outPath),
		zap.Int("rows", len(prepared.Features)),
		zap.Int("features", len(prepared.FeatureNames)))
	return nil
}
