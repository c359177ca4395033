package utils

import (
	"fmt"
	"strconv"
)

// FormatCount renders an engagement count the way the dashboard shows it:
// 1532 -> "1.5K", 2100000 -> "2.1M".
func FormatCount(n int) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
	if n >= 1000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return strconv.Itoa(n)
}
