package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mauv0809/padel-rotation/internal/rating"
	"github.com/mauv0809/padel-rotation/internal/scheduler"
)

// DefaultTuning returns the built-in scheduler and rating settings.
func DefaultTuning() Tuning {
	return Tuning{
		Scheduler: SchedulerTuning{
			Alpha:           scheduler.DefaultAlpha,
			Beta:            scheduler.DefaultBeta,
			IterationCap:    scheduler.DefaultIterationCap,
			RecencyHalfLife: scheduler.DefaultRecencyHalfLife,
		},
		Rating: RatingTuning{
			KFactor:       rating.DefaultKFactor,
			DefaultRating: rating.DefaultRating,
		},
	}
}

// LoadTuning layers defaults, an optional YAML file named by TUNING_FILE and
// TUNING_ prefixed env vars, in that order of precedence.
//
// Env keys map the first underscore after the prefix to a section boundary:
// TUNING_SCHEDULER_ITERATION_CAP sets scheduler.iteration_cap.
func LoadTuning() (Tuning, error) {
	k := koanf.New(".")

	if path := os.Getenv("TUNING_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Tuning{}, fmt.Errorf("failed to load tuning file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("TUNING_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "TUNING_"))
		return strings.Replace(s, "_", ".", 1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Tuning{}, fmt.Errorf("failed to load tuning env: %w", err)
	}
	k.Delete("file")

	t := DefaultTuning()
	if err := k.UnmarshalWithConf("", &t, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Tuning{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, err
	}
	return t, nil
}

// Validate rejects settings the scheduler or rating engine cannot run with.
func (t Tuning) Validate() error {
	switch {
	case t.Scheduler.Alpha < 0 || t.Scheduler.Beta < 0:
		return fmt.Errorf("%w: weights must not be negative (alpha=%v beta=%v)", ErrInvalidConfig, t.Scheduler.Alpha, t.Scheduler.Beta)
	case t.Scheduler.IterationCap < 0:
		return fmt.Errorf("%w: iteration cap %d is negative", ErrInvalidConfig, t.Scheduler.IterationCap)
	case t.Scheduler.RecencyHalfLife <= 0:
		return fmt.Errorf("%w: recency half-life must be positive", ErrInvalidConfig)
	case t.Rating.KFactor <= 0:
		return fmt.Errorf("%w: k-factor must be positive", ErrInvalidConfig)
	case t.Rating.DefaultRating <= 0:
		return fmt.Errorf("%w: default rating must be positive", ErrInvalidConfig)
	}
	return nil
}

// SchedulerOptions converts the tuning into scheduler options.
func (t Tuning) SchedulerOptions() []scheduler.Option {
	return []scheduler.Option{
		scheduler.WithWeights(t.Scheduler.Alpha, t.Scheduler.Beta),
		scheduler.WithIterationCap(t.Scheduler.IterationCap),
		scheduler.WithRecencyHalfLife(t.Scheduler.RecencyHalfLife),
	}
}

// RatingOptions converts the tuning into rating engine options.
func (t Tuning) RatingOptions() []rating.Option {
	return []rating.Option{rating.WithKFactor(t.Rating.KFactor)}
}
