package out

import (
	"context"

	"yuki/internal/modules/account/domain"
)

type CredentialStore interface {
	Load(ctx context.Context) (domain.LinkState, error)
	Save(ctx context.Context, state domain.LinkState) error
	Clear(ctx context.Context) error
}

// LinkVerifier exchanges a one-time code for credentials. An error means no
// response was received; apperrors.ErrNetworkCancelled marks cancellation.
type LinkVerifier interface {
	Verify(ctx context.Context, req domain.VerifyRequest) (domain.VerifyResponse, error)
}
