package sezkperr

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorFormatsReasonAndIdent(t *testing.T) {
	err := New(KindBoundaryMismatch, "fold adjacency failure").WithIdent("level=2 index=1")
	got := err.Error()
	if !strings.Contains(got, "BoundaryMismatch") || !strings.Contains(got, "level=2 index=1") {
		t.Fatalf("Error() = %q, want kind and ident present", got)
	}
}

func TestWrapPreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindIO, "writing proof file", cause)
	if !errors.Is(err, cause) {
		t.Fatal("Wrap must make errors.Is(err, cause) true via Unwrap")
	}
}

func TestKindOfUnwrapsSezkpError(t *testing.T) {
	err := Wrap(KindRootMismatch, "root mismatch", ErrRootMismatch)
	if KindOf(err) != KindRootMismatch {
		t.Fatalf("KindOf = %v, want %v", KindOf(err), KindRootMismatch)
	}
}

func TestKindOfDefaultsToInternalForForeignErrors(t *testing.T) {
	if KindOf(errors.New("plain")) != KindInternal {
		t.Fatal("KindOf on a non-sezkperr error should default to KindInternal")
	}
}

func TestExitCodeForNilIsZero(t *testing.T) {
	if ExitCodeFor(nil) != 0 {
		t.Fatal("ExitCodeFor(nil) must be 0")
	}
}

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindIO, 2},
		{KindDecodeFormat, 2},
		{KindSchemaVersion, 3},
		{KindManifestMismatch, 3},
		{KindBoundaryMismatch, 4},
		{KindLeafCountMismatch, 4},
		{KindRootMismatch, 4},
		{KindMacMismatch, 4},
		{KindSidecarMissing, 4},
		{KindInternal, 1},
	}
	for _, c := range cases {
		if got := ExitCode(c.kind); got != c.want {
			t.Errorf("ExitCode(%v) = %d, want %d", c.kind, got, c.want)
		}
	}
}

func TestWithIdentDoesNotMutateOriginal(t *testing.T) {
	base := New(KindIO, "reading block stream")
	withIdent := base.WithIdent("block_id=7")
	if base.Ident != "" {
		t.Fatal("WithIdent must not mutate the receiver")
	}
	if withIdent.Ident != "block_id=7" {
		t.Fatal("WithIdent must set Ident on the copy")
	}
}
