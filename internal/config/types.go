package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Slack         SlackConfig
	Turso         TursoConfig
	ProjectID     string
	Tuning        Tuning
}
type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// Tuning holds the knobs of the scheduler and the rating engine.
type Tuning struct {
	Scheduler SchedulerTuning `koanf:"scheduler"`
	Rating    RatingTuning    `koanf:"rating"`
}

type SchedulerTuning struct {
	// Alpha weighs repeated partnerships, Beta repeated oppositions.
	Alpha float64 `koanf:"alpha"`
	Beta  float64 `koanf:"beta"`

	// IterationCap bounds local-search swap attempts per round. 0 disables the search.
	IterationCap int `koanf:"iteration_cap"`

	RecencyHalfLife time.Duration `koanf:"recency_half_life"`
}

type RatingTuning struct {
	KFactor       float64 `koanf:"k_factor"`
	DefaultRating float64 `koanf:"default_rating"`
}
