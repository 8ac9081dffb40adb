package out

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"yuki/internal/modules/score/domain"
	scoreout "yuki/internal/modules/score/port/out"
	apperrors "yuki/internal/platform/errors"
	"yuki/internal/platform/httpjson"
)

const (
	scoresPath     = "/api/scores"
	maxDetailBytes = 200
)

type HTTPScoreSender struct {
	client *httpjson.Client
}

func NewHTTPScoreSender(client *httpjson.Client) scoreout.ScoreSender {
	return &HTTPScoreSender{client: client}
}

func (s *HTTPScoreSender) Send(ctx context.Context, payload domain.Payload) error {
	res, err := s.client.Post(ctx, scoresPath, payload)
	if err != nil {
		return err
	}
	if res.OK() {
		return nil
	}
	detail := gjson.GetBytes(res.Body, "error").String()
	if detail == "" {
		detail = strings.TrimSpace(string(res.Body))
		detail = truncateDetail(detail, maxDetailBytes)
	}
	if detail == "" {
		detail = "Unknown error"
	}
	return fmt.Errorf("%w: status %d: %s", apperrors.ErrServerRejected, res.Status, detail)
}

// truncateDetail cuts s to at most n bytes without splitting a rune.
func truncateDetail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
