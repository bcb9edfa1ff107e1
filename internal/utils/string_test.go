package utils

import "testing"

func TestIsValidInput(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"123", false},
		{"he!lo", false},
		{"aaaa", false},
		{"aa", true},
		{"hello", true},
		{"user-name", true},
		{"wörd", true},
	}
	for _, tc := range tests {
		if got := IsValidInput(tc.input); got != tc.want {
			t.Errorf("IsValidInput(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestFormatWithCommas(t *testing.T) {
	tests := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		65535:    "65,535",
		1234567:  "1,234,567",
		-1234567: "-1,234,567",
	}
	for n, want := range tests {
		if got := FormatWithCommas(n); got != want {
			t.Errorf("FormatWithCommas(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestCreateRankList(t *testing.T) {
	if got := CreateRankList(0); len(got) != 0 {
		t.Errorf("CreateRankList(0) = %v, want empty", got)
	}
	got := CreateRankList(3)
	for i, r := range got {
		if int(r) != i+1 {
			t.Errorf("rank[%d] = %d, want %d", i, r, i+1)
		}
	}
	if big := CreateRankList(70000); big[len(big)-1] != 0xFFFF {
		t.Errorf("last rank = %d, want saturation at 65535", big[len(big)-1])
	}
}

func TestEqualFold(t *testing.T) {
	if !EqualFold('A', 'a') || !EqualFold('É', 'é') || EqualFold('a', 'b') {
		t.Error("EqualFold mismatch")
	}
}
