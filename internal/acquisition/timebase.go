// internal/acquisition/timebase.go
package acquisition

import "math"

// FallbackTimebase is used for rates that are not in the table
const FallbackTimebase uint32 = 2

var timebaseTable = []struct {
	rateGHz float64
	code    uint32
}{
	{2.5, 1},
	{1.25, 2},
	{0.625, 3},
	{0.3125, 4},
	{0.15625, 5},
	{0.078125, 6},
	{0.0390625, 8},
}

// ResolveTimebase maps a sample rate to the driver timebase code. The rate
// must match a table entry within 1e-6 GHz; it is never rounded to the
// nearest entry.
func ResolveTimebase(rateGHz float64) uint32 {
	for _, tb := range timebaseTable {
		if math.Abs(rateGHz-tb.rateGHz) < rateTolerance {
			return tb.code
		}
	}
	return FallbackTimebase
}
