package out

import (
	"context"

	"yuki/internal/modules/score/domain"
)

// ScoreSender posts one payload. Errors wrap apperrors.ErrNetworkCancelled,
// ErrNetworkFailed or ErrServerRejected.
type ScoreSender interface {
	Send(ctx context.Context, payload domain.Payload) error
}

type CredentialSource interface {
	AuthToken(ctx context.Context) (string, error)
}

type IdentitySource interface {
	Identity(ctx context.Context) (domain.Identity, error)
}

type SubmissionLog interface {
	Append(ctx context.Context, entry domain.Entry) error
	Recent(ctx context.Context, limit int) ([]domain.Entry, error)
}
