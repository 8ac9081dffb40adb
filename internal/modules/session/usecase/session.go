package usecase

import (
	"context"
	"fmt"

	"yuki/internal/modules/session/domain"
	sessiondto "yuki/internal/modules/session/dto"
	sessionin "yuki/internal/modules/session/port/in"
	"yuki/internal/modules/session/service"
	apperrors "yuki/internal/platform/errors"
)

// Interactor keeps at most one active session. It is driven from the owning
// loop and holds no lock.
type Interactor struct {
	svc          *service.SessionService
	active       *domain.Session
	passReported bool
}

func NewInteractor(svc *service.SessionService) sessionin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Enter(_ context.Context, input sessiondto.EnterInput) (sessiondto.SessionOutput, error) {
	if i.active != nil {
		return sessiondto.SessionOutput{}, apperrors.ErrActiveSessionExists
	}
	if input.LevelID == 0 {
		return sessiondto.SessionOutput{}, fmt.Errorf("%w: level id is required", apperrors.ErrInvalidInput)
	}
	if input.CoinCount < 0 {
		return sessiondto.SessionOutput{}, fmt.Errorf("%w: negative coin count", apperrors.ErrInvalidInput)
	}
	i.active = i.svc.Start(domain.Level{
		ID:        input.LevelID,
		Name:      input.LevelName,
		Creator:   input.LevelCreator,
		CoinCount: input.CoinCount,
	}, input.Practice)
	i.passReported = false
	return toOutput(i.active), nil
}

func (i *Interactor) Progress(_ context.Context, percentage int) error {
	if i.active == nil {
		return apperrors.ErrNoActiveSession
	}
	i.active.OnProgress(percentage)
	return nil
}

func (i *Interactor) AttemptEnd(ctx context.Context) (sessiondto.AttemptOutput, error) {
	if i.active == nil {
		return sessiondto.AttemptOutput{}, apperrors.ErrNoActiveSession
	}
	incremented, death, submitted, err := i.svc.AttemptEnd(ctx, i.active)
	out := sessiondto.AttemptOutput{
		Incremented:     incremented,
		DeathPercentage: death,
		Attempts:        i.active.Attempts(),
		Submitted:       submitted,
	}
	return out, err
}

func (i *Interactor) Complete(_ context.Context, verifiedCoins int) error {
	if i.active == nil {
		return apperrors.ErrNoActiveSession
	}
	if verifiedCoins < 0 {
		return fmt.Errorf("%w: negative coin count", apperrors.ErrInvalidInput)
	}
	i.active.OnCompletion(verifiedCoins)
	return nil
}

// ReportOutcome is the end-screen hook. A pass is reported at most once per
// session.
func (i *Interactor) ReportOutcome(ctx context.Context, passed bool) (sessiondto.OutcomeOutput, error) {
	if i.active == nil {
		return sessiondto.OutcomeOutput{}, apperrors.ErrNoActiveSession
	}
	if passed && i.passReported {
		return sessiondto.OutcomeOutput{}, nil
	}
	submitted, err := i.svc.Outcome(ctx, i.active, passed)
	if err != nil {
		return sessiondto.OutcomeOutput{}, err
	}
	if passed && submitted {
		i.passReported = true
	}
	return sessiondto.OutcomeOutput{Submitted: submitted}, nil
}

// Quit leaves the level without reporting anything: quitting is not the end
// of an attempt.
func (i *Interactor) Quit(ctx context.Context) (sessiondto.ExitOutput, error) {
	return i.end(ctx, domain.EndedByQuit)
}

func (i *Interactor) Exit(ctx context.Context) (sessiondto.ExitOutput, error) {
	return i.end(ctx, domain.EndedByExit)
}

func (i *Interactor) Active(_ context.Context) (sessiondto.SessionOutput, error) {
	if i.active == nil {
		return sessiondto.SessionOutput{}, apperrors.ErrNoActiveSession
	}
	return toOutput(i.active), nil
}

func (i *Interactor) end(ctx context.Context, endedBy string) (sessiondto.ExitOutput, error) {
	if i.active == nil {
		return sessiondto.ExitOutput{}, apperrors.ErrNoActiveSession
	}
	session := i.active
	i.active = nil
	i.passReported = false
	summary, path, outstanding, err := i.svc.End(ctx, session, endedBy)
	out := sessiondto.ExitOutput{
		Session:     toOutput(session),
		EndedBy:     summary.EndedBy,
		EndedAt:     summary.EndedAt,
		JournalPath: path,
		Outstanding: outstanding,
	}
	return out, err
}

func toOutput(s *domain.Session) sessiondto.SessionOutput {
	level := s.Level()
	return sessiondto.SessionOutput{
		SessionID:    s.ID(),
		LevelID:      level.ID,
		LevelName:    level.Name,
		LevelCreator: level.Creator,
		Practice:     s.Practice(),
		State:        s.State().String(),
		Attempts:     s.Attempts(),
		Current:      s.Current(),
		Best:         s.Best(),
		Completed:    s.Completed(),
		Coins:        s.Coins(),
		Reports:      s.Reports(),
		StartedAt:    s.StartedAt(),
	}
}
