package out

import (
	"context"

	accountin "yuki/internal/modules/account/port/in"
	scoreout "yuki/internal/modules/score/port/out"
)

type AccountCredentialAdapter struct {
	account accountin.Usecase
}

func NewAccountCredentialAdapter(account accountin.Usecase) scoreout.CredentialSource {
	return &AccountCredentialAdapter{account: account}
}

func (a *AccountCredentialAdapter) AuthToken(ctx context.Context) (string, error) {
	return a.account.AuthToken(ctx)
}
