package main

import (
	"testing"
	"time"
)

func TestMsToDuration(t *testing.T) {
	tests := []struct {
		ms   float64
		want time.Duration
	}{
		{0, 0},
		{-5, 0},
		{16.5, 16500 * time.Microsecond},
		{2600, 2600 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := msToDuration(tt.ms); got != tt.want {
			t.Errorf("msToDuration(%v) = %v, want %v", tt.ms, got, tt.want)
		}
	}
}
