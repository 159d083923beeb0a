package config

import "gopkg.in/yaml.v3"

// Runbookfile represents the structure of the runbook.yaml configuration file.
type Runbookfile struct {
	Version string               `yaml:"version"`
	Targets map[string]TargetDTO `yaml:"targets"`
}

// TargetDTO represents a target definition in the configuration.
type TargetDTO struct {
	Description string            `yaml:"description"`
	Requires    string            `yaml:"requires"`
	Environment map[string]string `yaml:"environment"`
	Steps       []StepDTO         `yaml:"steps"`
}

// StepDTO represents a single command of a target.
type StepDTO struct {
	Cmd         []string          `yaml:"cmd"`
	Environment map[string]string `yaml:"environment"`
	Dir         string            `yaml:"dir"`
}

// targetOrder captures the raw targets mapping; map decoding loses declaration order.
type targetOrder struct {
	Targets yaml.Node `yaml:"targets"`
}
