// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package session

import "testing"

func TestShouldInterrupt(t *testing.T) {
	tests := []struct {
		name             string
		minutesRemaining int
		durationSeconds  int
		want             bool
	}{
		{name: "7 minute video with 2 remaining fits grace window", minutesRemaining: 2, durationSeconds: 420, want: false},
		{name: "8 minute video with 1 remaining exceeds grace window", minutesRemaining: 1, durationSeconds: 480, want: true},
		{name: "exactly at the boundary plays out", minutesRemaining: 0, durationSeconds: 300, want: false},
		{name: "one second over the boundary interrupts", minutesRemaining: 0, durationSeconds: 301, want: true},
		{name: "ceiling rounding counts partial minutes", minutesRemaining: 1, durationSeconds: 361, want: true},
		{name: "zero duration never interrupts", minutesRemaining: 0, durationSeconds: 0, want: false},
		{name: "plenty of time remaining", minutesRemaining: 30, durationSeconds: 1800, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldInterrupt(tt.minutesRemaining, tt.durationSeconds)
			if got != tt.want {
				t.Errorf("ShouldInterrupt(%d, %d) = %v, want %v",
					tt.minutesRemaining, tt.durationSeconds, got, tt.want)
			}
		})
	}
}
