package shared

import "strconv"

// NormalizeLimit 归一化列表条数参数。
func NormalizeLimit(raw string, fallback, max int) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}
