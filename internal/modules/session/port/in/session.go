package in

import (
	"context"

	"yuki/internal/modules/session/dto"
)

// Usecase is the level-session source's entry point. Every method must run
// on the owning loop and none of them block on the network.
type Usecase interface {
	Enter(ctx context.Context, input dto.EnterInput) (dto.SessionOutput, error)
	Progress(ctx context.Context, percentage int) error
	AttemptEnd(ctx context.Context) (dto.AttemptOutput, error)
	Complete(ctx context.Context, verifiedCoins int) error
	ReportOutcome(ctx context.Context, passed bool) (dto.OutcomeOutput, error)
	Quit(ctx context.Context) (dto.ExitOutput, error)
	Exit(ctx context.Context) (dto.ExitOutput, error)
	Active(ctx context.Context) (dto.SessionOutput, error)
}
