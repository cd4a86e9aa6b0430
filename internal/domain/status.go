package domain

// DefaultReferenceOffset is the residual head margin, in metres, a property
// needs for nominal supply. Subtracted from every reading before comparing
// against property elevation.
const DefaultReferenceOffset = 3.0

// DeriveStatus converts a pressure series into the in/out-of-supply signal
// for one property elevation. The returned slice is index-aligned with
// readings and always the same length.
//
// Properties above the logger are in supply when the effective supply head
// clears their elevation. Properties at or below the logger use the field
// rule: headloss-adjusted pressure must be positive. A reading of exactly
// zero is out of supply under either branch.
func DeriveStatus(readings []Reading, height, loggerHeight, headloss, referenceOffset float64) []bool {
	signal := make([]bool, len(readings))
	belowLogger := height <= loggerHeight

	for i, r := range readings {
		adjusted := r.Pressure - headloss
		if belowLogger {
			signal[i] = adjusted > 0
			continue
		}
		signal[i] = loggerHeight+(adjusted-referenceOffset) > height
	}
	return signal
}
