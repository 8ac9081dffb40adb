package out

import (
	"context"

	sessionout "yuki/internal/modules/session/port/out"
	"yuki/internal/platform/config"
)

// ConfigSettings serves the submit flags loaded at startup.
type ConfigSettings struct {
	autoSubmit  bool
	submitFails bool
}

func NewConfigSettings(cfg config.Config) sessionout.SettingsSource {
	return ConfigSettings{autoSubmit: cfg.AutoSubmit, submitFails: cfg.SubmitFails}
}

func (s ConfigSettings) SubmitSettings(context.Context) (bool, bool, error) {
	return s.autoSubmit, s.submitFails, nil
}
