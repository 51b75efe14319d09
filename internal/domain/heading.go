package domain

import "math"

var compassPoints = [8]string{
	"North", "North East", "East", "South East",
	"South", "South West", "West", "North West",
}

// DegreesToHeading maps a wind direction in degrees to one of eight compass
// points. Buckets are 45° wide and centered on each point, so 0° and 360° are
// both North. Half-way values round up (22.5° is North East). A nil direction
// yields "".
func DegreesToHeading(deg *float64) string {
	if deg == nil || math.IsNaN(*deg) || math.IsInf(*deg, 0) {
		return ""
	}
	idx := int(math.Mod(math.Floor(*deg/45+0.5), 8))
	if idx < 0 {
		idx += 8
	}
	return compassPoints[idx]
}
