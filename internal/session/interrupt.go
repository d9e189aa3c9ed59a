// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package session

// interruptGraceMinutes is the fixed overrun window granted to a video that
// is nearly finished when the limit is crossed. It bounds the worst-case
// overshoot while avoiding cutting a video off seconds before its end.
const interruptGraceMinutes = 5

// ShouldInterrupt decides whether a video in progress (or about to start)
// must be cut short. A video may run to completion when its ceiling-rounded
// minute length fits within the remaining minutes plus the grace window:
//
//	ceil(videoDurationSeconds/60) <= minutesRemaining + 5
//
// The check is advisory to playback control; it does not itself log a watch
// event.
func ShouldInterrupt(minutesRemaining, videoDurationSeconds int) bool {
	videoMinutes := (videoDurationSeconds + 59) / 60
	return videoMinutes > minutesRemaining+interruptGraceMinutes
}
