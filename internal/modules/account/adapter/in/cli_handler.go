package in

import (
	"context"
	"fmt"
	"time"

	accountdto "yuki/internal/modules/account/dto"
	accountin "yuki/internal/modules/account/port/in"
	apperrors "yuki/internal/platform/errors"
	"yuki/internal/platform/task"
)

// cancelGrace bounds the wait for the cancelled result once ctx is done.
const cancelGrace = 2 * time.Second

// Runner executes fn on the owning loop and waits for it.
type Runner interface {
	Do(ctx context.Context, fn func() error) error
}

type CLIHandler struct {
	usecase accountin.Usecase
	loop    Runner
}

func NewCLIHandler(usecase accountin.Usecase, loop Runner) CLIHandler {
	return CLIHandler{usecase: usecase, loop: loop}
}

// Link issues the request on the loop and blocks until its callback fires.
// Cancelling ctx cancels the request; the result then reports it.
func (h CLIHandler) Link(ctx context.Context, code string, accountID int, username string) (accountdto.LinkResult, error) {
	results := make(chan accountdto.LinkResult, 1)
	var handle *task.Handle
	err := h.loop.Do(ctx, func() error {
		var err error
		handle, err = h.usecase.RequestLink(ctx, accountdto.LinkInput{Code: code, AccountID: accountID, Username: username}, func(r accountdto.LinkResult) {
			results <- r
		})
		return err
	})
	if err != nil {
		return accountdto.LinkResult{}, err
	}
	select {
	case <-handle.Done():
	case <-ctx.Done():
		select {
		case <-handle.Done():
		case <-time.After(cancelGrace):
			return accountdto.LinkResult{}, fmt.Errorf("%w: link result not delivered", apperrors.ErrNetworkCancelled)
		}
	}
	select {
	case r := <-results:
		return r, nil
	default:
		return accountdto.LinkResult{}, fmt.Errorf("%w: link result dropped", apperrors.ErrNetworkCancelled)
	}
}

func (h CLIHandler) Unlink(ctx context.Context) error {
	return h.loop.Do(ctx, func() error { return h.usecase.Unlink(ctx) })
}

func (h CLIHandler) Status(ctx context.Context) (accountdto.StateOutput, error) {
	var out accountdto.StateOutput
	err := h.loop.Do(ctx, func() error {
		var err error
		out, err = h.usecase.State(ctx)
		return err
	})
	return out, err
}

// NormalizeCode runs the presentation-side code checks.
func (h CLIHandler) NormalizeCode(code string) (string, error) {
	return h.usecase.NormalizeCode(code)
}
