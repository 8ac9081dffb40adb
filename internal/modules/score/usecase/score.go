package usecase

import (
	"context"
	"fmt"

	"yuki/internal/modules/score/domain"
	scoredto "yuki/internal/modules/score/dto"
	scorein "yuki/internal/modules/score/port/in"
	"yuki/internal/modules/score/service"
	apperrors "yuki/internal/platform/errors"
	"yuki/internal/platform/task"
)

const defaultHistoryLimit = 10

type Interactor struct {
	svc *service.SubmissionService
}

func NewInteractor(svc *service.SubmissionService) scorein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Submit(ctx context.Context, input scoredto.SubmitInput) (*task.Handle, error) {
	if input.Percentage < 0 || input.Percentage > 100 {
		return nil, fmt.Errorf("%w: percentage %d out of range", apperrors.ErrInvalidInput, input.Percentage)
	}
	if input.Attempts < 0 {
		return nil, fmt.Errorf("%w: negative attempts", apperrors.ErrInvalidInput)
	}
	if input.LevelID == 0 {
		return nil, fmt.Errorf("%w: level id is required", apperrors.ErrInvalidInput)
	}
	coins := make([]bool, len(input.Coins))
	copy(coins, input.Coins)
	return i.svc.Submit(ctx, domain.Record{
		SessionID:    input.SessionID,
		LevelID:      input.LevelID,
		LevelName:    input.LevelName,
		LevelCreator: input.LevelCreator,
		Percentage:   input.Percentage,
		Attempts:     input.Attempts,
		Passed:       input.Passed,
		Practice:     input.Practice,
		Coins:        coins,
	})
}

func (i *Interactor) Pending() int {
	return i.svc.Pending()
}

func (i *Interactor) Recent(ctx context.Context, limit int) ([]scoredto.HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	entries, err := i.svc.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]scoredto.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, scoredto.HistoryEntry{
			LevelID:     e.Record.LevelID,
			LevelName:   e.Record.LevelName,
			Percentage:  e.Record.Percentage,
			Attempts:    e.Record.Attempts,
			Passed:      e.Record.Passed,
			Practice:    e.Record.Practice,
			Coins:       e.Record.Coins,
			Status:      string(e.Status),
			Detail:      e.Detail,
			SubmittedAt: e.SubmittedAt,
		})
	}
	return out, nil
}
