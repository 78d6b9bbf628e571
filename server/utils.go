package server

import (
	"fmt"
	"strconv"
)

// parseLimit parses a positive row limit, capped at 100.
func parseLimit(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("limit must be positive")
	}
	if n > 100 {
		n = 100
	}
	return n, nil
}
