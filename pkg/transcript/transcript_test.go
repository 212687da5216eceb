package transcript

import "testing"

func TestMacDeterministic(t *testing.T) {
	a := New("domain-a")
	a.Absorb("x", []byte("hello"))
	b := New("domain-a")
	b.Absorb("x", []byte("hello"))
	if a.Mac() != b.Mac() {
		t.Fatal("identical absorb sequences under the same domain produced different MACs")
	}
}

func TestMacSensitiveToDomain(t *testing.T) {
	a := New("domain-a")
	a.Absorb("x", []byte("hello"))
	b := New("domain-b")
	b.Absorb("x", []byte("hello"))
	if a.Mac() == b.Mac() {
		t.Fatal("different domains must not collide")
	}
}

func TestMacSensitiveToLabel(t *testing.T) {
	a := New("domain")
	a.Absorb("label-1", []byte("same-bytes"))
	b := New("domain")
	b.Absorb("label-2", []byte("same-bytes"))
	if a.Mac() == b.Mac() {
		t.Fatal("swapping the label with identical data must change the MAC")
	}
}

func TestMacSensitiveToFraming(t *testing.T) {
	// Without length-tagging, Absorb("ab","c") and Absorb("a","bc") could
	// collide; confirm they do not.
	a := New("domain")
	a.Absorb("ab", []byte("c"))
	b := New("domain")
	b.Absorb("a", []byte("bc"))
	if a.Mac() == b.Mac() {
		t.Fatal("label/data framing must prevent boundary-shifting collisions")
	}
}

func TestMacNonForwarding(t *testing.T) {
	tr := New("domain")
	tr.Absorb("x", []byte("1"))
	first := tr.Mac()
	tr.Absorb("y", []byte("2"))
	second := tr.Mac()
	if first == second {
		t.Fatal("absorbing more data must change the MAC")
	}
	// Taking another snapshot without further absorbs must be stable.
	if second != tr.Mac() {
		t.Fatal("Mac must be idempotent when nothing new is absorbed")
	}
}

func TestChallengeDeterministicAndLabelSensitive(t *testing.T) {
	tr := New("domain")
	tr.Absorb("x", []byte("seed"))
	c1 := tr.Challenge("are_bytes", 32)
	c2 := tr.Challenge("are_bytes", 32)
	if string(c1) != string(c2) {
		t.Fatal("Challenge must be deterministic given the same transcript state and label")
	}
	c3 := tr.Challenge("other_label", 32)
	if string(c1) == string(c3) {
		t.Fatal("different challenge labels must not collide")
	}
}

func TestCloneDivergesFromParent(t *testing.T) {
	parent := New("domain")
	parent.Absorb("x", []byte("shared"))

	forkA := parent.Clone("prefix-a")
	forkB := parent.Clone("prefix-b")
	if forkA.Mac() == forkB.Mac() {
		t.Fatal("clones with different prefixes must diverge")
	}

	forkA.Absorb("y", []byte("only-in-a"))
	if forkA.Mac() == forkB.Mac() {
		t.Fatal("forks must keep diverging once one absorbs unique data")
	}
}

func TestCloneDoesNotMutateParent(t *testing.T) {
	parent := New("domain")
	parent.Absorb("x", []byte("shared"))
	before := parent.Mac()

	fork := parent.Clone("prefix")
	fork.Absorb("y", []byte("fork-only"))

	if parent.Mac() != before {
		t.Fatal("cloning and absorbing into the fork must not affect the parent transcript")
	}
}
