package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type SamplingCfg struct {
	PointsPerSecond float64 `yaml:"points_per_second"`
	MinPoints       int     `yaml:"min_points"`
	MaxPoints       int     `yaml:"max_points"`
}

type TransitionCfg struct {
	Mode            string            `yaml:"mode"`           // snap | crossfade | fade_through_black
	DurationBars    float64           `yaml:"duration_bars"`  // default window length
	FadeOutRatio    float64           `yaml:"fade_out_ratio"` // crossfade only
	MinSectionBars  float64           `yaml:"min_section_bars"`
	OverlapsEnabled bool              `yaml:"overlaps_enabled"`
	Channels        map[string]string `yaml:"channels,omitempty"` // per-channel default strategy
}

type Config struct {
	RepeatBudget int           `yaml:"repeat_budget"`
	BlendSamples int           `yaml:"blend_samples"`
	PreviewFPS   int           `yaml:"preview_fps"`
	Sampling     SamplingCfg   `yaml:"sampling"`
	Transition   TransitionCfg `yaml:"transition"`
}

// Default returns the stock configuration used when no config.yaml is
// present.
func Default() *Config {
	return &Config{
		RepeatBudget: 1000,
		BlendSamples: 32,
		PreviewFPS:   30,
		Sampling: SamplingCfg{
			PointsPerSecond: 10,
			MinPoints:       12,
			MaxPoints:       400,
		},
		Transition: TransitionCfg{
			Mode:            "crossfade",
			DurationBars:    1,
			FadeOutRatio:    0.5,
			MinSectionBars:  1,
			OverlapsEnabled: true,
		},
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
