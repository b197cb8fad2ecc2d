package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fadilmartias/hiring-pipeline/internal/alert"
	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/fadilmartias/hiring-pipeline/internal/scoring"
	"gopkg.in/yaml.v3"
)

const pipelineConfigPathEnv = "PIPELINE_CONFIG"

// PipelineConfig is the business policy of the pipeline: alert thresholds
// and interview scoring weights.
type PipelineConfig struct {
	Alerts         alert.Policy                     `yaml:"alerts"`
	AlertCacheTTL  time.Duration                    `yaml:"alertCacheTTL"`
	Weights        map[model.Stage][]scoring.Weight `yaml:"weights"`
	UploadDir      string                           `yaml:"uploadDir"`
	MaxUploadBytes int64                            `yaml:"maxUploadBytes"`

	StageWeights scoring.StageWeights `yaml:"-"`
}

var (
	pipelineConfig    *PipelineConfig
	pipelineConfigErr error
	pipelineOnce      sync.Once
)

// LoadPipelineConfig returns the defaults, overridden by the YAML file named
// in PIPELINE_CONFIG. Invalid weights are an error; startup should stop.
func LoadPipelineConfig() (*PipelineConfig, error) {
	pipelineOnce.Do(func() {
		var raw []byte
		if path := os.Getenv(pipelineConfigPathEnv); path != "" {
			raw, pipelineConfigErr = os.ReadFile(path)
			if pipelineConfigErr != nil {
				pipelineConfigErr = fmt.Errorf("read pipeline config %s: %w", path, pipelineConfigErr)
				return
			}
		}
		pipelineConfig, pipelineConfigErr = ParsePipelineConfig(raw)
		if pipelineConfigErr != nil {
			return
		}
		pipelineConfig.AlertCacheTTL = durationEnv("ALERT_CACHE_TTL", pipelineConfig.AlertCacheTTL)
		if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
			pipelineConfig.UploadDir = dir
		}
	})
	return pipelineConfig, pipelineConfigErr
}

// ParsePipelineConfig applies raw YAML (may be empty) over the defaults and
// validates the result.
func ParsePipelineConfig(raw []byte) (*PipelineConfig, error) {
	cfg := defaultPipelineConfig()
	if len(raw) > 0 {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse pipeline config: %w", err)
		}
	}
	weights, err := scoring.NewStageWeights(cfg.Weights)
	if err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}
	cfg.StageWeights = weights
	if cfg.AlertCacheTTL < 0 {
		return nil, fmt.Errorf("pipeline config: alertCacheTTL must not be negative")
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("pipeline config: maxUploadBytes must be positive")
	}
	return cfg, nil
}

func defaultPipelineConfig() *PipelineConfig {
	weights := make(map[model.Stage][]scoring.Weight, len(scoring.DefaultStageWeights))
	for stage, items := range scoring.DefaultStageWeights {
		weights[stage] = append([]scoring.Weight(nil), items...)
	}
	return &PipelineConfig{
		Alerts:         alert.DefaultPolicy(),
		AlertCacheTTL:  time.Minute,
		Weights:        weights,
		UploadDir:      "./uploads/documents",
		MaxUploadBytes: 5 * 1024 * 1024,
	}
}
