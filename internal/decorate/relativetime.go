package decorate

import (
	"fmt"
	"math"
	"time"
)

// FormatRelative renders the elapsed time between t and now as a coarse
// human-readable string. The day count is the ceiling of the absolute
// difference, so a same-day timestamp still reads "1 day ago".
func FormatRelative(t, now time.Time) string {
	days := int(math.Ceil(math.Abs(now.Sub(t).Hours()) / 24))
	if days < 1 {
		days = 1
	}
	switch {
	case days == 1:
		return "1 day ago"
	case days < 30:
		return fmt.Sprintf("%d days ago", days)
	case days < 365:
		return fmt.Sprintf("%d months ago", days/30)
	default:
		return fmt.Sprintf("%d years ago", days/365)
	}
}
