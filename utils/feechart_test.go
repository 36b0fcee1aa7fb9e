package utils

import "testing"

func TestGetFee(t *testing.T) {
	cases := []struct {
		board string
		class string
		want  float64
	}{
		{"Maharashtra", "1", 250},
		{"Maharashtra", "7", 500},
		{"Maharashtra", "10", 900},
		{"CBSE", "1", 350},
		{"CBSE", "9", 1000},
		{"CBSE", "10", 1500},
	}
	for _, tc := range cases {
		fee, ok := GetFee(tc.board, tc.class)
		if !ok {
			t.Fatalf("expected fee for %s class %s", tc.board, tc.class)
		}
		if fee != tc.want {
			t.Fatalf("%s class %s: expected %v got %v", tc.board, tc.class, tc.want, fee)
		}
	}
}

func TestGetFeeUnknownCombination(t *testing.T) {
	if _, ok := GetFee("ICSE", "5"); ok {
		t.Fatalf("expected no fee for unknown board")
	}
	if _, ok := GetFee("CBSE", "11"); ok {
		t.Fatalf("expected no fee for unconfigured class")
	}
	if IsValidBoardClass("Maharashtra", "0") {
		t.Fatalf("class 0 must be invalid")
	}
	if !IsValidBoardClass("Maharashtra", "5") {
		t.Fatalf("Maharashtra class 5 must be valid")
	}
}
