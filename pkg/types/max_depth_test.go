// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestParseMaxDepth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    MaxDepth
		wantErr bool
	}{
		{"-1", UnlimitedDepth, false},
		{"0", 0, false},
		{"3", 3, false},
		{" 2 ", 2, false},
		{"-2", 0, true},
		{"deep", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseMaxDepth(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMaxDepth(%q) = %d, want error", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidMaxDepth) {
					t.Errorf("error should wrap ErrInvalidMaxDepth, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMaxDepth(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMaxDepth(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMaxDepth_Allows(t *testing.T) {
	t.Parallel()

	if !UnlimitedDepth.Allows(1000) {
		t.Error("unlimited depth should allow any depth")
	}
	if !MaxDepth(0).Allows(0) {
		t.Error("depth 0 should allow the root")
	}
	if MaxDepth(0).Allows(1) {
		t.Error("depth 0 should not allow children")
	}
	if !MaxDepth(2).Allows(2) || MaxDepth(2).Allows(3) {
		t.Error("depth 2 should allow levels 0..2 only")
	}
}
