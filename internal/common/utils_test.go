package common

import "testing"

func TestHasAny(t *testing.T) {
	if !HasAny("Chance Rain Showers", "snow", "showers") {
		t.Fatalf("expected case-insensitive match")
	}
	if HasAny("Sunny", "rain", "snow") {
		t.Fatalf("unexpected match")
	}
	if HasAny("Sunny") {
		t.Fatalf("no substrings never match")
	}
}

func TestMaxInt(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"10 mph", 10, true},
		{"5 to 10 mph", 10, true},
		{"20 to 15 mph", 20, true},
		{"calm", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := MaxInt(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("MaxInt(%q) = %d, %v; want %d, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
