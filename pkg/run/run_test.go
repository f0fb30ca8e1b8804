package run

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"titanicml/pkg/config"
	"titanicml/pkg/dataset"
	"titanicml/pkg/report"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Data = filepath.Join("testdata", "titanic.csv")
	// keep the heavier models small so the end-to-end test stays quick
	cfg.Models.Forest.Trees = 10
	cfg.Models.Boosting.Trees = 10
	cfg.Models.Logistic.Epochs = 50
	cfg.Models.SVC.Epochs = 50
	cfg.Models.MLP.Epochs = 50
	return cfg
}

var accuracyLine = regexp.MustCompile(`^.+ accuracy: \d\.\d\d$`)

func TestExecuteEndToEnd(t *testing.T) {
	var out strings.Builder
	require.NoError(t, Execute(testConfig(), nil, &out))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "root\n"), "schema tree first")
	assert.Contains(t, text, " |-- PassengerId: integer (nullable = false)")
	assert.Contains(t, text, " |-- Age: double (nullable = true)")
	assert.Contains(t, text, " |-- Sex: string (nullable = false)")
	assert.Contains(t, text, " |-- Embarked: string (nullable = true)")

	var accLines []string
	for _, line := range strings.Split(text, "\n") {
		if accuracyLine.MatchString(line) {
			accLines = append(accLines, line)
		}
	}
	require.Len(t, accLines, 7, "one accuracy line per model:\n%s", text)
	for _, name := range []string{
		"Logistic Regression", "Decision Tree", "Random Forest",
		"Gradient-Boosted Trees", "Naive Bayes", "Linear SVC",
		"Multilayer Perceptron",
	} {
		assert.Contains(t, text, name+" accuracy: ")
	}
}

func TestExecuteDeterministicSplit(t *testing.T) {
	cfg := testConfig()
	var a, b strings.Builder
	require.NoError(t, Execute(cfg, nil, &a))
	require.NoError(t, Execute(cfg, nil, &b))
	assert.Equal(t, a.String(), b.String(), "fixed seed, identical report")
}

func TestExecuteCrossValidation(t *testing.T) {
	cfg := testConfig()
	cfg.Split.CVFolds = 2
	var out strings.Builder
	require.NoError(t, Execute(cfg, nil, &out))
	assert.Contains(t, out.String(), "Logistic Regression accuracy: ")
}

func TestAverageFoldsIncludesTrainTime(t *testing.T) {
	sums := []report.Result{{
		Model:     "Logistic Regression",
		Accuracy:  1.6,
		Precision: 1.4,
		Recall:    1.2,
		F1:        1.3,
		TrainTime: 40 * time.Millisecond,
	}}
	averageFolds(sums, 2)
	assert.InDelta(t, 0.8, sums[0].Accuracy, 1e-12)
	assert.InDelta(t, 0.7, sums[0].Precision, 1e-12)
	assert.InDelta(t, 0.6, sums[0].Recall, 1e-12)
	assert.InDelta(t, 0.65, sums[0].F1, 1e-12)
	assert.Equal(t, 20*time.Millisecond, sums[0].TrainTime)
}

func TestExecuteWritesChartAndModels(t *testing.T) {
	cfg := testConfig()
	dir := t.TempDir()
	cfg.Chart = filepath.Join(dir, "acc.png")
	cfg.SaveDir = filepath.Join(dir, "models")

	var out strings.Builder
	require.NoError(t, Execute(cfg, nil, &out))

	info, err := os.Stat(cfg.Chart)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	_, err = os.Stat(filepath.Join(cfg.SaveDir, "decision_tree.gob"))
	assert.NoError(t, err, "decision tree serialized")
	_, err = os.Stat(filepath.Join(cfg.SaveDir, "random_forest.gob"))
	assert.NoError(t, err, "random forest serialized")
}

func TestExecuteMissingFile(t *testing.T) {
	cfg := testConfig()
	cfg.Data = filepath.Join(t.TempDir(), "nope.csv")
	var out strings.Builder
	assert.Error(t, Execute(cfg, nil, &out))
}

func TestStagesMatchFeatureList(t *testing.T) {
	cfg := testConfig()
	frame, err := dataset.ReadCSV(cfg.Data, nil)
	require.NoError(t, err)

	stages := Stages(cfg, frame)
	var names []string
	for _, s := range stages {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"imputer", "index Sex", "index Embarked", "assembler", "scaler"}, names)
}

func TestModelsZoo(t *testing.T) {
	models := Models(testConfig())
	require.Len(t, models, 7)
	seen := map[string]bool{}
	for _, m := range models {
		assert.False(t, seen[m.Name()], "duplicate %s", m.Name())
		seen[m.Name()] = true
	}
}

func TestPrepareWritesCSV(t *testing.T) {
	cfg := testConfig()
	outPath := filepath.Join(t.TempDir(), "prepared.csv")
	require.NoError(t, Prepare(cfg, outPath, nil))

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Greater(t, len(lines), 1)
	assert.Equal(t, "Pclass,SexIndex,Age,SibSp,Parch,Fare,EmbarkedIndex,Survived", lines[0])
	assert.Len(t, strings.Split(lines[1], ","), 8)
	assert.Len(t, lines, 51, "header plus one row per passenger")
}
