package out

import (
	"context"

	"yuki/internal/modules/session/domain"
	"yuki/internal/platform/task"
)

// ScoreSubmitter hands a record to the submission client. It returns
// without waiting for the network.
type ScoreSubmitter interface {
	Submit(ctx context.Context, record domain.ScoreRecord) (*task.Handle, error)
}

type SettingsSource interface {
	SubmitSettings(ctx context.Context) (autoSubmit, submitFails bool, err error)
}

type LinkStatus interface {
	Linked(ctx context.Context) (bool, error)
}

type Journal interface {
	Save(ctx context.Context, summary domain.Summary) (string, error)
}
