// Kidscreen - Parent-Curated Video Viewing with Daily Limits
// Copyright 2026 Kidscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kidscreen/kidscreen

package ingest

import (
	"fmt"
	"strconv"
	"strings"
)

// parseISODuration converts the ISO 8601 durations the videos endpoint
// returns (PT4M13S, PT1H2M, P1DT30M) into whole seconds. Fractional
// components do not occur in YouTube payloads and are rejected.
func parseISODuration(s string) (int, error) {
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("invalid duration %q: missing P prefix", s)
	}

	rest := s[1:]
	inTime := false
	total := 0
	num := ""

	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
		case r == 'T':
			if inTime {
				return 0, fmt.Errorf("invalid duration %q: repeated T", s)
			}
			inTime = true
		default:
			if num == "" {
				return 0, fmt.Errorf("invalid duration %q: designator %c without value", s, r)
			}
			n, err := strconv.Atoi(num)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q: %w", s, err)
			}
			num = ""

			switch {
			case r == 'D' && !inTime:
				total += n * 86400
			case r == 'H' && inTime:
				total += n * 3600
			case r == 'M' && inTime:
				total += n * 60
			case r == 'S' && inTime:
				total += n
			default:
				return 0, fmt.Errorf("invalid duration %q: unexpected designator %c", s, r)
			}
		}
	}

	if num != "" {
		return 0, fmt.Errorf("invalid duration %q: trailing number", s)
	}

	return total, nil
}
