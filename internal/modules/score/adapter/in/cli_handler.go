package in

import (
	"context"

	scoredto "yuki/internal/modules/score/dto"
	scorein "yuki/internal/modules/score/port/in"
)

type CLIHandler struct {
	usecase scorein.Usecase
}

func NewCLIHandler(usecase scorein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]scoredto.HistoryEntry, error) {
	return h.usecase.Recent(ctx, limit)
}

func (h CLIHandler) Pending() int {
	return h.usecase.Pending()
}
