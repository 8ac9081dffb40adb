package domain

import (
	"fmt"
	"strings"

	apperrors "yuki/internal/platform/errors"
)

// Saved value keys of the credential store.
const (
	KeyAuthToken   = "auth-token"
	KeyDisplayName = "discord-username"
)

const (
	CodeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
)

// Messages handed to the link result callback.
const (
	MsgUnknownError     = "Unknown error"
	MsgRequestFailed    = "Request failed"
	MsgRequestCancelled = "Request cancelled"
	MsgSaveFailed       = "Could not save credentials"
)

// LinkState is the persisted link between the local player and the remote
// account. An empty token means unlinked whatever the display name holds.
type LinkState struct {
	AuthToken   string
	DisplayName string
}

func (s LinkState) Linked() bool { return s.AuthToken != "" }

// Identity is the player's account inside the game.
type Identity struct {
	AccountID int
	Username  string
}

type VerifyRequest struct {
	Code      string `json:"code"`
	AccountID int    `json:"gd_account_id"`
	Username  string `json:"gd_username"`
}

// VerifyResponse is what came back from a verify call that reached the
// server. Fields the server left out stay zero.
type VerifyResponse struct {
	HTTPOK      bool
	Success     bool
	AuthToken   string
	DisplayName string
	Error       string
}

type Result struct {
	Success bool
	Message string
}

// NormalizeCode checks a code typed by the player: six characters from the
// code alphabet. The server matches codes case-insensitively; upper case is
// what the link page shows.
func NormalizeCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("%w: please enter a code", apperrors.ErrInvalidInput)
	}
	if len(code) != CodeLength {
		return "", fmt.Errorf("%w: code must be %d characters", apperrors.ErrInvalidInput, CodeLength)
	}
	for _, r := range code {
		if !strings.ContainsRune(codeAlphabet, r) {
			return "", fmt.Errorf("%w: code contains %q", apperrors.ErrInvalidInput, r)
		}
	}
	return strings.ToUpper(code), nil
}
