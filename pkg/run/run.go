// Package run wires the whole pipeline together: load, print the schema,
// preprocess, split, train every configured model and report accuracy.
package run

import (
	"encoding"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"titanicml/pkg/config"
	"titanicml/pkg/dataprep"
	"titanicml/pkg/dataset"
	"titanicml/pkg/model"
	"titanicml/pkg/pipeline"
	"titanicml/pkg/report"
)

// Execute performs a full pipeline run, writing the schema tree and the
// per-model accuracy lines to stdout.
func Execute(cfg config.Config, log *zap.Logger, stdout io.Writer) error {
	if log == nil {
		log = zap.NewNop()
	}
	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))

	frame, err := dataset.ReadCSV(cfg.Data, log)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, frame.Schema().String())

	// The preprocessing chain is fit on the full table and the split comes
	// after; see the ordering note in DESIGN.md.
	prep := pipeline.New(Stages(cfg, frame)...)
	prepared, err := prep.Fit(frame)
	if err != nil {
		return err
	}

	models := Models(cfg)

	var results []report.Result
	if cfg.Split.CVFolds > 1 {
		results, err = crossValidate(cfg, prepared, models, log)
	} else {
		results, err = holdOut(cfg, prepared, models, log)
	}
	if err != nil {
		return err
	}

	report.Write(stdout, results, cfg.Verbose)

	if cfg.Chart != "" {
		if err := report.Chart(cfg.Chart, results); err != nil {
			return err
		}
		log.Info("wrote accuracy chart", zap.String("path", cfg.Chart))
	}
	if cfg.SaveDir != "" {
		if err := saveModels(cfg.SaveDir, models); err != nil {
			return err
		}
		log.Info("saved models", zap.String("dir", cfg.SaveDir))
	}
	return nil
}

// Stages builds the preprocessing chain for the configured features: fill
// constants, one string indexer per *Index feature whose base column is a
// string column, vector assembly, standardization.
func Stages(cfg config.Config, frame *dataset.Frame) []pipeline.Stage {
	numeric := map[string]float64{}
	if _, ok := frame.Column("Age"); ok {
		numeric["Age"] = cfg.Fill.Age
	}
	if _, ok := frame.Column("Fare"); ok {
		numeric["Fare"] = cfg.Fill.Fare
	}
	categorical := map[string]string{}
	if _, ok := frame.Column("Embarked"); ok && cfg.Fill.Embarked != "" {
		categorical["Embarked"] = cfg.Fill.Embarked
	}

	stages := []pipeline.Stage{dataprep.NewImputer(numeric, categorical)}
	for _, feat := range cfg.Features {
		base, isIndex := strings.CutSuffix(feat, "Index")
		if !isIndex {
			continue
		}
		if c, ok := frame.Column(base); ok && c.Type == dataset.String {
			stages = append(stages, dataprep.NewStringIndexer(base))
		}
	}
	stages = append(stages,
		dataprep.NewAssembler(cfg.Features...),
		dataprep.NewScaler(),
	)
	return stages
}

// Models instantiates the classifier zoo from the configuration.
func Models(cfg config.Config) []model.Classifier {
	seed := cfg.Split.Seed
	m := cfg.Models
	return []model.Classifier{
		model.NewLogisticRegression(m.Logistic.LearningRate, m.Logistic.Epochs, m.Logistic.BatchSize, seed),
		model.NewDecisionTree(
			model.WithMaxDepth(m.Tree.MaxDepth),
			model.WithMinSamplesSplit(m.Tree.MinSamplesSplit),
			model.WithMinSamplesLeaf(m.Tree.MinSamplesLeaf),
			model.WithCriterion(m.Tree.Criterion),
			model.WithTreeSeed(seed),
		),
		model.NewRandomForest(
			model.WithTrees(m.Forest.Trees),
			model.WithForestDepth(m.Forest.MaxDepth),
			model.WithForestFeatures(m.Forest.MaxFeatures),
			model.WithForestSeed(seed),
		),
		model.NewGradientBoosting(m.Boosting.Trees, m.Boosting.MaxDepth, m.Boosting.LearningRate),
		model.NewNaiveBayes(),
		model.NewLinearSVC(m.SVC.LearningRate, m.SVC.Epochs, m.SVC.Lambda, seed),
		model.NewMLP(m.MLP.Hidden, m.MLP.LearningRate, m.MLP.Momentum, m.MLP.Epochs, m.MLP.BatchSize, seed),
	}
}

// holdOut trains every model on the train partition concurrently and
// scores it on the held-out partition.
func holdOut(cfg config.Config, prepared *dataset.Frame, models []model.Classifier, log *zap.Logger) ([]report.Result, error) {
	train, test := dataset.Split(prepared, cfg.Split.TestRatio, cfg.Split.Seed)
	log.Info("split dataset",
		zap.Int("train_rows", train.Len()),
		zap.Int("test_rows", test.Len()),
		zap.Float64("test_ratio", cfg.Split.TestRatio),
		zap.Int64("seed", cfg.Split.Seed))

	yTrain, err := train.Floats(cfg.LabelCol)
	if err != nil {
		return nil, err
	}
	yTest, err := test.Floats(cfg.LabelCol)
	if err != nil {
		return nil, err
	}
	return score(models, train.Features, yTrain, test.Features, yTest, log)
}

// crossValidate reports each model's mean accuracy over k seeded folds.
func crossValidate(cfg config.Config, prepared *dataset.Frame, models []model.Classifier, log *zap.Logger) ([]report.Result, error) {
	k := cfg.Split.CVFolds
	folds := dataset.KFold(prepared.Len(), k, cfg.Split.Seed)
	log.Info("cross-validating", zap.Int("folds", k))

	sums := make([]report.Result, len(models))
	for fi, fold := range folds {
		var trainRows []int
		for fj, other := range folds {
			if fj != fi {
				trainRows = append(trainRows, other...)
			}
		}
		train := prepared.Select(trainRows)
		test := prepared.Select(fold)
		yTrain, err := train.Floats(cfg.LabelCol)
		if err != nil {
			return nil, err
		}
		yTest, err := test.Floats(cfg.LabelCol)
		if err != nil {
			return nil, err
		}
		results, err := score(models, train.Features, yTrain, test.Features, yTest, log)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", fi, err)
		}
		for i, r := range results {
			sums[i].Model = r.Model
			sums[i].Accuracy += r.Accuracy
			sums[i].Precision += r.Precision
			sums[i].Recall += r.Recall
			sums[i].F1 += r.F1
			sums[i].TrainTime += r.TrainTime
		}
	}
	averageFolds(sums, k)
	return sums, nil
}

// averageFolds turns per-fold sums into per-fold means, train time
// included.
func averageFolds(sums []report.Result, k int) {
	for i := range sums {
		sums[i].Accuracy /= float64(k)
		sums[i].Precision /= float64(k)
		sums[i].Recall /= float64(k)
		sums[i].F1 /= float64(k)
		sums[i].TrainTime /= time.Duration(k)
	}
}

// score fits all models concurrently and evaluates them on the test rows.
func score(models []model.Classifier, XTrain [][]float64, yTrain []float64, XTest [][]float64, yTest []float64, log *zap.Logger) ([]report.Result, error) {
	results := make([]report.Result, len(models))
	var g errgroup.Group
	for i, clf := range models {
		i, clf := i, clf
		g.Go(func() error {
			start := time.Now()
			if err := clf.Fit(XTrain, yTrain); err != nil {
				return fmt.Errorf("train %s: %w", clf.Name(), err)
			}
			elapsed := time.Since(start)
			pred := clf.Predict(XTest)
			prec, rec, f1 := model.PrecisionRecallF1(yTest, pred)
			results[i] = report.Result{
				Model:     clf.Name(),
				Accuracy:  model.Accuracy(yTest, pred),
				Precision: prec,
				Recall:    rec,
				F1:        f1,
				TrainTime: elapsed,
			}
			log.Info("trained model",
				zap.String("model", clf.Name()),
				zap.Float64("accuracy", results[i].Accuracy),
				zap.Duration("train_time", elapsed))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// saveModels persists every model that knows how to serialize itself.
func saveModels(dir string, models []model.Classifier) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("run: create %s: %w", dir, err)
	}
	for _, clf := range models {
		bm, ok := clf.(encoding.BinaryMarshaler)
		if !ok {
			continue
		}
		raw, err := bm.MarshalBinary()
		if err != nil {
			return fmt.Errorf("run: marshal %s: %w", clf.Name(), err)
		}
		name := strings.ToLower(strings.ReplaceAll(clf.Name(), " ", "_")) + ".gob"
		if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
			return fmt.Errorf("run: save %s: %w", clf.Name(), err)
		}
	}
	return nil
}
