package in

import (
	"context"

	"yuki/internal/modules/account/dto"
	"yuki/internal/platform/task"
)

// Usecase must be driven from the owning loop; onResult is delivered there.
type Usecase interface {
	RequestLink(ctx context.Context, input dto.LinkInput, onResult func(dto.LinkResult)) (*task.Handle, error)
	Unlink(ctx context.Context) error
	State(ctx context.Context) (dto.StateOutput, error)
	AuthToken(ctx context.Context) (string, error)
	Busy() bool
	// NormalizeCode checks a typed link code and returns its canonical form.
	NormalizeCode(code string) (string, error)
}
