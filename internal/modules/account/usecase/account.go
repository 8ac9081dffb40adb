package usecase

import (
	"context"
	"fmt"
	"strings"

	"yuki/internal/modules/account/domain"
	accountdto "yuki/internal/modules/account/dto"
	accountin "yuki/internal/modules/account/port/in"
	"yuki/internal/modules/account/service"
	apperrors "yuki/internal/platform/errors"
	"yuki/internal/platform/task"
)

type Interactor struct {
	svc *service.LinkService
}

func NewInteractor(svc *service.LinkService) accountin.Usecase {
	return &Interactor{svc: svc}
}

// RequestLink expects a non-empty code and a game account id; the code
// format itself is checked by the caller.
func (i *Interactor) RequestLink(ctx context.Context, input accountdto.LinkInput, onResult func(accountdto.LinkResult)) (*task.Handle, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, fmt.Errorf("%w: link code is required", apperrors.ErrInvalidInput)
	}
	if input.AccountID == 0 {
		return nil, fmt.Errorf("%w: log in to your game account first", apperrors.ErrInvalidInput)
	}
	if onResult == nil {
		onResult = func(accountdto.LinkResult) {}
	}
	req := domain.VerifyRequest{Code: code, AccountID: input.AccountID, Username: input.Username}
	return i.svc.RequestLink(ctx, req, func(r domain.Result) {
		onResult(accountdto.LinkResult{Success: r.Success, Message: r.Message})
	})
}

func (i *Interactor) Unlink(ctx context.Context) error {
	return i.svc.Unlink(ctx)
}

func (i *Interactor) State(ctx context.Context) (accountdto.StateOutput, error) {
	state, err := i.svc.State(ctx)
	if err != nil {
		return accountdto.StateOutput{}, err
	}
	out := accountdto.StateOutput{Linked: state.Linked()}
	if out.Linked {
		out.DisplayName = state.DisplayName
	}
	return out, nil
}

func (i *Interactor) AuthToken(ctx context.Context) (string, error) {
	state, err := i.svc.State(ctx)
	if err != nil {
		return "", err
	}
	return state.AuthToken, nil
}

func (i *Interactor) Busy() bool {
	return i.svc.Busy()
}

func (i *Interactor) NormalizeCode(code string) (string, error) {
	return domain.NormalizeCode(code)
}
