package weather

import (
	"math"
	"testing"
)

func TestDescribeCode(t *testing.T) {
	cases := map[int]string{
		0:    "Clear sky",
		3:    "Overcast",
		95:   "Thunderstorm",
		9999: "Forecast unavailable",
		-1:   "Forecast unavailable",
	}
	for code, want := range cases {
		if got := DescribeCode(code); got != want {
			t.Errorf("DescribeCode(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestWindDirectionOf(t *testing.T) {
	cases := []struct {
		deg  float64
		want string
	}{
		{0, "N"},
		{44, "N"},
		{45, "NE"},
		{90, "E"},
		{180, "S"},
		{270, "W"},
		{315, "NW"},
		{360, "N"},
		{-45, "NW"},
	}
	for _, tc := range cases {
		if got := WindDirectionOf(tc.deg); got != tc.want {
			t.Errorf("WindDirectionOf(%v) = %q, want %q", tc.deg, got, tc.want)
		}
	}

	if got := WindDirectionOf(math.NaN()); got != UnknownWindDirection {
		t.Errorf("WindDirectionOf(NaN) = %q, want placeholder", got)
	}
	if got := WindDirectionOfPtr(nil); got != UnknownWindDirection {
		t.Errorf("WindDirectionOfPtr(nil) = %q, want placeholder", got)
	}
}

func TestFoldCompass(t *testing.T) {
	cases := map[string]string{
		"N":   "N",
		"NNE": "N",
		"ENE": "NE",
		"SSW": "S",
		"NW":  "NW",
		"":    UnknownWindDirection,
		"XYZ": UnknownWindDirection,
	}
	for in, want := range cases {
		if got := FoldCompass(in); got != want {
			t.Errorf("FoldCompass(%q) = %q, want %q", in, got, want)
		}
	}
}
