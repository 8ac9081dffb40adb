package out

import (
	"context"

	"github.com/tidwall/gjson"

	"yuki/internal/modules/account/domain"
	accountout "yuki/internal/modules/account/port/out"
	"yuki/internal/platform/httpjson"
)

const verifyPath = "/api/link/verify"

type HTTPLinkVerifier struct {
	client *httpjson.Client
}

func NewHTTPLinkVerifier(client *httpjson.Client) accountout.LinkVerifier {
	return &HTTPLinkVerifier{client: client}
}

// Verify reads the reply leniently: a body that is not JSON, or lacks a
// field, leaves the matching response field empty.
func (v *HTTPLinkVerifier) Verify(ctx context.Context, req domain.VerifyRequest) (domain.VerifyResponse, error) {
	res, err := v.client.Post(ctx, verifyPath, req)
	if err != nil {
		return domain.VerifyResponse{}, err
	}
	out := domain.VerifyResponse{HTTPOK: res.OK()}
	if !gjson.ValidBytes(res.Body) {
		return out, nil
	}
	fields := gjson.GetManyBytes(res.Body, "success", "auth_token", "discord_username", "error")
	out.Success = fields[0].Type == gjson.True
	out.AuthToken = stringField(fields[1])
	out.DisplayName = stringField(fields[2])
	out.Error = stringField(fields[3])
	return out, nil
}

func stringField(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}
