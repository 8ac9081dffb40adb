package in

import (
	"context"
	"errors"
	"fmt"
	"time"

	sessiondto "yuki/internal/modules/session/dto"
	sessionin "yuki/internal/modules/session/port/in"
)

// Runner runs fn on the owning loop and waits for it.
type Runner interface {
	Do(ctx context.Context, fn func() error) error
}

// Timeline is the clock a replay moves forward.
type Timeline interface {
	Now() time.Time
	Set(t time.Time)
}

type EventResult struct {
	At     time.Duration
	Kind   string
	Detail string
}

type PlayResult struct {
	Events []EventResult
	Exit   sessiondto.ExitOutput
}

type CLIHandler struct {
	usecase  sessionin.Usecase
	loop     Runner
	timeline Timeline
}

func NewCLIHandler(usecase sessionin.Usecase, loop Runner, timeline Timeline) CLIHandler {
	return CLIHandler{usecase: usecase, loop: loop, timeline: timeline}
}

// Play replays script against a fresh session and waits for the reports it
// produced to settle.
func (h CLIHandler) Play(ctx context.Context, script Script) (PlayResult, error) {
	if err := script.Validate(); err != nil {
		return PlayResult{}, err
	}
	base := h.timeline.Now()
	result := PlayResult{}
	err := h.loop.Do(ctx, func() error {
		_, err := h.usecase.Enter(ctx, sessiondto.EnterInput{
			LevelID:      script.Level.ID,
			LevelName:    script.Level.Name,
			LevelCreator: script.Level.Creator,
			CoinCount:    script.Level.Coins,
			Practice:     script.Practice,
		})
		return err
	})
	if err != nil {
		return PlayResult{}, err
	}

	ended := false
	for _, event := range script.Events {
		h.timeline.Set(base.Add(event.At))
		var detail string
		err := h.loop.Do(ctx, func() error {
			var err error
			detail, ended, err = h.apply(ctx, event, &result.Exit)
			return err
		})
		if err != nil {
			err = fmt.Errorf("%s at %s: %w", event.Kind(), event.At, err)
			if !ended {
				err = errors.Join(err, h.abandon(ctx, &result))
			}
			return result, err
		}
		if detail != "" {
			result.Events = append(result.Events, EventResult{At: event.At, Kind: event.Kind(), Detail: detail})
		}
	}
	if !ended {
		err := h.loop.Do(ctx, func() error {
			var err error
			result.Exit, err = h.usecase.Exit(ctx)
			return err
		})
		if err != nil {
			return result, err
		}
	}
	for _, handle := range result.Exit.Outstanding {
		if err := handle.Wait(ctx); err != nil {
			return result, err
		}
	}
	return result, nil
}

// abandon exits a session whose replay failed part way, so the next Enter
// starts clean.
func (h CLIHandler) abandon(ctx context.Context, result *PlayResult) error {
	ctx = context.WithoutCancel(ctx)
	return h.loop.Do(ctx, func() error {
		var err error
		result.Exit, err = h.usecase.Exit(ctx)
		return err
	})
}

func (h CLIHandler) apply(ctx context.Context, event Event, exit *sessiondto.ExitOutput) (string, bool, error) {
	switch event.Kind() {
	case KindProgress:
		return "", false, h.usecase.Progress(ctx, *event.Progress)
	case KindReset:
		out, err := h.usecase.AttemptEnd(ctx)
		if err != nil {
			return "", false, err
		}
		detail := fmt.Sprintf("attempt %d ended at %d%%", out.Attempts, out.DeathPercentage)
		if !out.Incremented {
			detail = "restart after completion"
		}
		if out.Submitted {
			detail += ", reported"
		}
		return detail, false, nil
	case KindComplete:
		if err := h.usecase.Complete(ctx, *event.Complete); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("level complete with %d verified coins", *event.Complete), false, nil
	case KindEndScreen, KindFail:
		passed := event.Kind() == KindEndScreen
		out, err := h.usecase.ReportOutcome(ctx, passed)
		if err != nil {
			return "", false, err
		}
		detail := "pass"
		if !passed {
			detail = "fail"
		}
		if out.Submitted {
			detail += ", reported"
		} else {
			detail += ", not reported"
		}
		return detail, false, nil
	case KindQuit:
		out, err := h.usecase.Quit(ctx)
		*exit = out
		if err != nil {
			return "", true, err
		}
		return "quit, nothing reported", true, nil
	}
	return "", false, fmt.Errorf("unknown event")
}

func (h CLIHandler) Active(ctx context.Context) (sessiondto.SessionOutput, error) {
	var out sessiondto.SessionOutput
	err := h.loop.Do(ctx, func() error {
		var err error
		out, err = h.usecase.Active(ctx)
		return err
	})
	return out, err
}
