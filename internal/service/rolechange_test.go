package service

import "testing"

func TestPlanChange(t *testing.T) {
	cases := []struct {
		hasExisting, premium bool
		want                 changeBranch
		destructive          bool
	}{
		{hasExisting: true, premium: false, want: branchDestroyBoth, destructive: true},
		{hasExisting: true, premium: true, want: branchPromote},
		{hasExisting: false, premium: true, want: branchAppendMain},
		{hasExisting: false, premium: false, want: branchReplaceMain, destructive: true},
	}
	for _, c := range cases {
		got := planChange(c.hasExisting, c.premium)
		if got != c.want {
			t.Fatalf("planChange(%v, %v) = %s, ожидали %s", c.hasExisting, c.premium, got, c.want)
		}
		if got.destructive() != c.destructive {
			t.Fatalf("%s: destructive = %v", got, got.destructive())
		}
	}
}
