package out

import (
	"context"

	"yuki/internal/modules/score/domain"
	scoreout "yuki/internal/modules/score/port/out"
)

// StaticIdentity reports the game account configured for this client.
type StaticIdentity struct {
	identity domain.Identity
}

func NewStaticIdentity(accountID int, username string) scoreout.IdentitySource {
	return StaticIdentity{identity: domain.Identity{AccountID: accountID, Username: username}}
}

func (s StaticIdentity) Identity(context.Context) (domain.Identity, error) {
	return s.identity, nil
}
