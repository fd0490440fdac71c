package memio

import (
	"strings"
	"testing"
)

func exampleMapsContent() string {
	return strings.Join([]string{
		"00400000-00452000 r-xp 00000000 08:02 173521 /bin/cat",
		"7f1234700000-7f1234800000 rw-s 00000000 00:00 0 ",
		"7ffabc000000-7ffabc100000 rw-p 00000000 00:00 0 [heap]",
		"7f9900000000-7f9900100000 rw-p 00000000 08:02 9 /lib/x86_64-linux-gnu/libc.so.6",
	}, "\n") + "\n"
}

func TestParseMapsLineRejectsExecutableAndShared(t *testing.T) {
	r := strings.NewReader(exampleMapsContent())
	set, err := ParseMapsContent(r, "", IgnoreList)
	if err != nil {
		t.Fatal(err)
	}

	if len(set) != 1 {
		t.Fatalf("expected 1 accepted region, got %d: %+v", len(set), set)
	}
	if set[0].Comment != "[heap]" {
		t.Fatalf("expected heap region to survive, got %+v", set[0])
	}
}

func TestParseMapsLineAcceptable(t *testing.T) {
	cases := []struct {
		perms string
		want  bool
	}{
		{"r-xp", false},
		{"rw-p", true},
		{"rw-s", false},
		{"rwxp", true},
		{"r--p", false},
	}
	for _, c := range cases {
		m := MapsLine{Perms: c.perms}
		if got := m.Acceptable(); got != c.want {
			t.Fatalf("Acceptable(%q) = %v, want %v", c.perms, got, c.want)
		}
	}
}

func TestScopeFilter(t *testing.T) {
	r := strings.NewReader(exampleMapsContent())
	set, err := ParseMapsContent(r, "heap", IgnoreList)
	if err != nil {
		t.Fatal(err)
	}
	if len(set) != 1 || set[0].Comment != "[heap]" {
		t.Fatalf("scope filter failed: %+v", set)
	}

	r2 := strings.NewReader(exampleMapsContent())
	set2, err := ParseMapsContent(r2, "nonexistent", IgnoreList)
	if err != nil {
		t.Fatal(err)
	}
	if len(set2) != 0 {
		t.Fatalf("expected no matches for unrelated scope, got %+v", set2)
	}
}

func TestParseMapsLineMalformed(t *testing.T) {
	if _, err := ParseMapsLine("garbage"); err == nil {
		t.Fatal("expected error for malformed line")
	}
}
