package out

import (
	"context"

	scoredto "yuki/internal/modules/score/dto"
	scorein "yuki/internal/modules/score/port/in"
	"yuki/internal/modules/session/domain"
	sessionout "yuki/internal/modules/session/port/out"
	"yuki/internal/platform/task"
)

type ScoreSubmitterAdapter struct {
	score scorein.Usecase
}

func NewScoreSubmitterAdapter(score scorein.Usecase) sessionout.ScoreSubmitter {
	return &ScoreSubmitterAdapter{score: score}
}

func (a *ScoreSubmitterAdapter) Submit(ctx context.Context, record domain.ScoreRecord) (*task.Handle, error) {
	return a.score.Submit(ctx, scoredto.SubmitInput{
		SessionID:    record.SessionID,
		LevelID:      record.LevelID,
		LevelName:    record.LevelName,
		LevelCreator: record.LevelCreator,
		Percentage:   record.Percentage,
		Attempts:     record.Attempts,
		Passed:       record.Passed,
		Practice:     record.Practice,
		Coins:        record.Coins,
	})
}
