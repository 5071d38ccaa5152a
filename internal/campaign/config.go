package campaign

import (
	"github.com/animus-labs/eqsat-pipeline/internal/platform/env"
)

type Config struct {
	// OutBase is the directory campaign outputs and logs are written under.
	OutBase string
	// JobsOverride replaces every mode's default job count when positive.
	JobsOverride int
}

func ConfigFromEnv() (Config, error) {
	jobs, err := env.NonNegativeInt("JOBS_OVERRIDE", 0)
	if err != nil {
		return Config{}, err
	}
	return Config{
		OutBase:      env.String("OUT_BASE", "./"),
		JobsOverride: jobs,
	}, nil
}

// Jobs resolves the job count of m.
func (c Config) Jobs(m Mode) int {
	if c.JobsOverride > 0 {
		return c.JobsOverride
	}
	if m.Jobs > 0 {
		return m.Jobs
	}
	return 1
}
