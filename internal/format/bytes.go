package format

import (
	"math"
	"strconv"
)

// Binary unit step
const (
	UnitStep = 1024
)

// ByteUnits lists the known units from smallest to largest. Values larger
// than the last unit stay expressed in it.
var ByteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB"}

// Bytes formats a byte count using binary units, e.g. 1536 -> "1.5 KiB".
// Zero and negative sizes render as an empty string.
func Bytes(size int64) string {
	if size <= 0 {
		return ""
	}

	value := float64(size)
	unit := 0
	for value >= UnitStep && unit < len(ByteUnits)-1 {
		value /= UnitStep
		unit++
	}
	if round2(value) >= UnitStep && unit < len(ByteUnits)-1 {
		value /= UnitStep
		unit++
	}

	return strconv.FormatFloat(round2(value), 'f', -1, 64) + " " + ByteUnits[unit]
}

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
