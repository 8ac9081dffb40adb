package out

import (
	"context"

	accountin "yuki/internal/modules/account/port/in"
	sessionout "yuki/internal/modules/session/port/out"
)

type AccountLinkStatus struct {
	account accountin.Usecase
}

func NewAccountLinkStatus(account accountin.Usecase) sessionout.LinkStatus {
	return &AccountLinkStatus{account: account}
}

func (a *AccountLinkStatus) Linked(ctx context.Context) (bool, error) {
	state, err := a.account.State(ctx)
	if err != nil {
		return false, err
	}
	return state.Linked, nil
}
