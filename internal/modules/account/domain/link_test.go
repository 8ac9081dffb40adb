package domain_test

import (
	"errors"
	"testing"

	"yuki/internal/modules/account/domain"
	apperrors "yuki/internal/platform/errors"
)

func TestLinkedDependsOnTokenOnly(t *testing.T) {
	t.Parallel()
	if (domain.LinkState{DisplayName: "bob"}).Linked() {
		t.Fatalf("display name without token must count as unlinked")
	}
	if !(domain.LinkState{AuthToken: "tok"}).Linked() {
		t.Fatalf("token without display name must count as linked")
	}
}

func TestNormalizeCode(t *testing.T) {
	t.Parallel()
	got, err := domain.NormalizeCode(" abc12_ ")
	if err != nil || got != "ABC12_" {
		t.Fatalf("expected ABC12_, got %q %v", got, err)
	}
	for _, bad := range []string{"", "ABC12", "ABC1234", "ABC 12", "ABC!12"} {
		if _, err := domain.NormalizeCode(bad); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %q, got %v", bad, err)
		}
	}
}
