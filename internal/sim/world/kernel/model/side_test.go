package model

import "testing"

func TestSide_VectorRoundTrip(t *testing.T) {
	for _, s := range Sides {
		got, ok := SideFromVector(s.Vector())
		if !ok || got != s {
			t.Fatalf("SideFromVector(%v)=%v,%v", s.Vector(), got, ok)
		}
		if s.Reverse().Reverse() != s {
			t.Fatalf("double reverse of %v", s)
		}
		if s.Reverse().Vector() != s.Vector().Neg() {
			t.Fatalf("reverse of %v points the wrong way", s)
		}
	}
	if _, ok := SideFromVector(Vec3i{X: 1, Y: 1}); ok {
		t.Fatalf("diagonal vector must not map to a side")
	}
}

func TestParseBlock(t *testing.T) {
	cases := []struct {
		in   string
		want Block
	}{
		{in: "STONE", want: Unoriented("STONE")},
		{in: "CHEST:FRONT", want: Facing("CHEST", SideFront)},
		{in: "LOG:top", want: Facing("LOG", SideTop)},
	}
	for _, c := range cases {
		got, err := ParseBlock(c.in)
		if err != nil {
			t.Fatalf("ParseBlock(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseBlock(%q)=%+v want %+v", c.in, got, c.want)
		}
		if back, _ := ParseBlock(got.String()); back != got {
			t.Fatalf("String round trip failed for %q", c.in)
		}
	}
	for _, bad := range []string{"", "CHEST:UP", ":TOP"} {
		if _, err := ParseBlock(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
