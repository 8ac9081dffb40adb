package in

import (
	"context"

	"yuki/internal/modules/score/dto"
	"yuki/internal/platform/task"
)

type Usecase interface {
	// Submit is fire-and-forget: the handle only tells when the attempt
	// finished, its outcome goes to the log and the history.
	Submit(ctx context.Context, input dto.SubmitInput) (*task.Handle, error)
	Pending() int
	Recent(ctx context.Context, limit int) ([]dto.HistoryEntry, error)
}
