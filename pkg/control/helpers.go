package control

import (
	"fmt"
	"strconv"
)

// parsePositiveInt parses s as a positive integer, rejecting zero and
// negative values.
func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("expected a positive integer, got %d", n)
	}
	return n, nil
}
