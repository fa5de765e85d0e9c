package service

import (
	"fmt"
	"strings"

	"github.com/seniorcare/smartmatch/internal/config"
	"github.com/seniorcare/smartmatch/internal/domain/matching"
	"github.com/seniorcare/smartmatch/internal/domain/vocabulary"
)

// NewEngine builds a matching engine from configuration: an optional
// vocabulary file, optional weight overrides and the experience reference.
func NewEngine(cfg *config.Config) (*matching.Engine, error) {
	opts := []matching.Option{matching.WithReferenceYears(cfg.ReferenceYears)}

	if path := strings.TrimSpace(cfg.VocabularyFile); path != "" {
		table, err := vocabulary.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		opts = append(opts, matching.WithVocabulary(table))
	}
	if len(cfg.Weights) > 0 {
		w, err := matching.WeightsFromMap(cfg.Weights)
		if err != nil {
			return nil, fmt.Errorf("configure weights: %w", err)
		}
		opts = append(opts, matching.WithWeights(w))
	}

	engine, err := matching.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return engine, nil
}
