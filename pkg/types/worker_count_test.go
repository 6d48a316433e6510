// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestWorkerCount_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value WorkerCount
		want  bool
	}{
		{"unset is valid", 0, true},
		{"one worker", 1, true},
		{"many workers", 64, true},
		{"negative is invalid", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, errs := tt.value.IsValid()
			if got != tt.want {
				t.Errorf("WorkerCount(%d).IsValid() = %v, want %v", tt.value, got, tt.want)
			}
			if !tt.want && !errors.Is(errs[0], ErrInvalidWorkerCount) {
				t.Errorf("error should wrap ErrInvalidWorkerCount, got: %v", errs[0])
			}
		})
	}
}

func TestWorkerCount_OrDefault(t *testing.T) {
	t.Parallel()

	if got := WorkerCount(0).OrDefault(4); got != 4 {
		t.Errorf("WorkerCount(0).OrDefault(4) = %d, want 4", got)
	}
	if got := WorkerCount(2).OrDefault(4); got != 2 {
		t.Errorf("WorkerCount(2).OrDefault(4) = %d, want 2", got)
	}
	if WorkerCount(0).IsSet() {
		t.Error("WorkerCount(0).IsSet() = true, want false")
	}
}
