// Package config holds the pipeline configuration: data location,
// preprocessing constants, split parameters and per-model hyperparameters.
// Values come from compiled-in defaults, optionally overridden by a YAML
// file and then by TITANIC_* environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const envPrefix = "titanic"

// Config is the full pipeline configuration.
type Config struct {
	Data     string `yaml:"data" envconfig:"DATA"`
	LabelCol string `yaml:"label_col" envconfig:"LABEL_COL"`

	// Columns assembled into the feature vector, in order.
	Features []string `yaml:"features" envconfig:"FEATURES"`

	Fill  Fill  `yaml:"fill"`
	Split Split `yaml:"split"`

	Models Models `yaml:"models"`

	// Chart, if set, is the path of an accuracy bar chart PNG.
	Chart string `yaml:"chart" envconfig:"CHART"`
	// SaveDir, if set, receives gob-serialized fitted tree models.
	SaveDir string `yaml:"save_dir" envconfig:"SAVE_DIR"`
	Verbose bool   `yaml:"verbose" envconfig:"VERBOSE"`
}

// Fill holds the null-fill constants applied before encoding.
type Fill struct {
	Age      float64 `yaml:"age" envconfig:"FILL_AGE"`
	Fare     float64 `yaml:"fare" envconfig:"FILL_FARE"`
	Embarked string  `yaml:"embarked" envconfig:"FILL_EMBARKED"`
}

// Split holds the train/test split parameters.
type Split struct {
	TestRatio float64 `yaml:"test_ratio" envconfig:"TEST_RATIO"`
	Seed      int64   `yaml:"seed" envconfig:"SEED"`
	// CVFolds > 1 switches evaluation to k-fold cross-validation.
	CVFolds int `yaml:"cv_folds" envconfig:"CV_FOLDS"`
}

// Models groups per-model hyperparameters.
type Models struct {
	Logistic Logistic `yaml:"logistic"`
	Tree     Tree     `yaml:"tree"`
	Forest   Forest   `yaml:"forest"`
	Boosting Boosting `yaml:"boosting"`
	SVC      SVC      `yaml:"svc"`
	MLP      MLP      `yaml:"mlp"`
}

type Logistic struct {
	LearningRate float64 `yaml:"learning_rate"`
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
}

type Tree struct {
	MaxDepth        int    `yaml:"max_depth"`
	MinSamplesSplit int    `yaml:"min_samples_split"`
	MinSamplesLeaf  int    `yaml:"min_samples_leaf"`
	Criterion       string `yaml:"criterion"`
}

type Forest struct {
	Trees       int `yaml:"trees"`
	MaxDepth    int `yaml:"max_depth"`
	MaxFeatures int `yaml:"max_features"`
}

type Boosting struct {
	Trees        int     `yaml:"trees"`
	MaxDepth     int     `yaml:"max_depth"`
	LearningRate float64 `yaml:"learning_rate"`
}

type SVC struct {
	LearningRate float64 `yaml:"learning_rate"`
	Epochs       int     `yaml:"epochs"`
	Lambda       float64 `yaml:"lambda"`
}

type MLP struct {
	Hidden       []int   `yaml:"hidden"`
	LearningRate float64 `yaml:"learning_rate"`
	Momentum     float64 `yaml:"momentum"`
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
}

// Default returns the stock configuration: the Titanic training CSV, the
// seven-column feature vector, the fixed fill constants and a seeded 80/20
// split.
func Default() Config {
	return Config{
		Data:     "train.csv",
		LabelCol: "Survived",
		Features: []string{"Pclass", "SexIndex", "Age", "SibSp", "Parch", "Fare", "EmbarkedIndex"},
		Fill: Fill{
			Age:      29.7,
			Fare:     32.2,
			Embarked: "S",
		},
		Split: Split{
			TestRatio: 0.2,
			Seed:      42,
		},
		Models: Models{
			Logistic: Logistic{LearningRate: 0.1, Epochs: 200, BatchSize: 32},
			Tree:     Tree{MaxDepth: 5, MinSamplesSplit: 2, MinSamplesLeaf: 1, Criterion: "gini"},
			Forest:   Forest{Trees: 100, MaxDepth: 8, MaxFeatures: 3},
			Boosting: Boosting{Trees: 100, MaxDepth: 3, LearningRate: 0.1},
			SVC:      SVC{LearningRate: 0.01, Epochs: 200, Lambda: 0.001},
			MLP:      MLP{Hidden: []int{16, 8}, LearningRate: 0.05, Momentum: 0.9, Epochs: 300, BatchSize: 32},
		},
	}
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (skipped when path is empty), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("config: environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Data == "" {
		return fmt.Errorf("config: data path is empty")
	}
	if c.LabelCol == "" {
		return fmt.Errorf("config: label column is empty")
	}
	if len(c.Features) == 0 {
		return fmt.Errorf("config: feature list is empty")
	}
	if c.Split.TestRatio <= 0 || c.Split.TestRatio >= 1 {
		return fmt.Errorf("config: test ratio %v outside (0,1)", c.Split.TestRatio)
	}
	if c.Split.CVFolds < 0 || c.Split.CVFolds == 1 {
		return fmt.Errorf("config: cv folds must be 0 or >= 2, got %d", c.Split.CVFolds)
	}
	return nil
}
