package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var ageRe = regexp.MustCompile(`^(?:(\d+)w)?(?:(\d+)d)?(?:(\d+)h)?$`)

// parseAge reads ages like "2w", "3d12h" or "1w2d4h". Units must appear in
// week, day, hour order. An empty string means no limit.
func parseAge(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	m := ageRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%q is not a valid age", s)
	}
	var age time.Duration
	for i, unit := range []time.Duration{7 * 24 * time.Hour, 24 * time.Hour, time.Hour} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("%q is not a valid age: %w", s, err)
		}
		age += time.Duration(n) * unit
	}
	return age, nil
}
