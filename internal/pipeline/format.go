package pipeline

import (
	"strconv"

	"github.com/aleister1102/meshhound/internal/models"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders n with base-1024 units, truncated to one decimal with
// a trailing ".0" dropped: 2048 -> "2 KB", 1587 -> "1.5 KB", 0 -> "0 B".
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}

	unit := 0
	div := int64(1)
	for unit < len(sizeUnits)-1 && n/div >= 1024 {
		div *= 1024
		unit++
	}

	whole := n / div
	tenths := (n % div) * 10 / div

	s := strconv.FormatInt(whole, 10)
	if tenths > 0 {
		s += "." + strconv.FormatInt(tenths, 10)
	}
	return s + " " + sizeUnits[unit]
}

// FormatSize renders an optional declared size.
func FormatSize(n *int64) string {
	if n == nil || *n < 0 {
		return models.UnknownSize
	}
	return FormatBytes(*n)
}
