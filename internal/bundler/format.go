package bundler

import (
	"math"
	"strconv"
	"strings"
)

var byteUnits = []string{"Bytes", "KiB", "MiB", "GiB", "TiB", "PiB"}

// FormatBytes renders a byte count with binary units at 1024 scale.
// Trailing zeros after the decimal point are trimmed, so 1024 renders as
// "1 KiB" and 1536 as "1.5 KiB". Zero or negative sizes render as
// "0 Bytes". decimals overrides the default of 2 decimal places.
func FormatBytes(n int64, decimals ...int) string {
	if n <= 0 {
		return "0 Bytes"
	}

	dm := 2
	if len(decimals) > 0 && decimals[0] >= 0 {
		dm = decimals[0]
	}

	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(byteUnits) {
		i = len(byteUnits) - 1
	}

	v := float64(n) / math.Pow(1024, float64(i))
	s := strconv.FormatFloat(v, 'f', dm, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}

	return s + " " + byteUnits[i]
}
