/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sethvargo/go-envconfig"
)

// Mode values with special meaning.
const (
	ModeOnline   = "online"
	ModeOffline  = "offline"
	ModeDisabled = "disabled"
)

// Config holds the experiment-tracking settings.
type Config struct {
	Project  string `env:"WANDB_PROJECT,default=SwissJudgementPrediction"`
	Mode     string `env:"WANDB_MODE,default=online"`
	RunGroup string `env:"WANDB_RUN_GROUP"`
	// RunID identifies this run across resumptions.
	RunID string `env:"WANDB_RUN_ID"`
}

// LoadConfig reads Config from the process environment. An unset run
// group defaults to runName and an unset run id is generated.
func LoadConfig(ctx context.Context, runName string) (*Config, error) {
	return LoadConfigWith(ctx, runName, envconfig.OsLookuper())
}

// LoadConfigWith reads Config through l.
func LoadConfigWith(ctx context.Context, runName string, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("processing tracking config: %w", err)
	}
	switch cfg.Mode {
	case ModeOnline, ModeOffline, ModeDisabled:
	default:
		return nil, fmt.Errorf("WANDB_MODE %q is not one of online, offline, disabled", cfg.Mode)
	}
	if cfg.RunGroup == "" {
		cfg.RunGroup = runName
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	return &cfg, nil
}

// Enabled reports whether a tracking integration should be used.
func (c *Config) Enabled() bool {
	return c.Mode != ModeDisabled
}

// ReportTo is the integration name handed to the trainer.
func (c *Config) ReportTo() string {
	if !c.Enabled() {
		return "none"
	}
	return "wandb"
}

// Environment returns the settings as the environment of the trainer
// backend.
func (c *Config) Environment() map[string]string {
	env := map[string]string{
		"WANDB_PROJECT": c.Project,
		"WANDB_MODE":    c.Mode,
	}
	if c.RunGroup != "" {
		env["WANDB_RUN_GROUP"] = c.RunGroup
	}
	if c.RunID != "" {
		env["WANDB_RUN_ID"] = c.RunID
	}
	return env
}
