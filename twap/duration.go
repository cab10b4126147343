package twap

// Unit is a time unit expressed as its millisecond multiplier.
type Unit int64

const (
	Minutes Unit = 60 * 1000
	Hours   Unit = 60 * Minutes
	Days    Unit = 24 * Hours
	Weeks   Unit = 7 * Days
	Months  Unit = 30 * Days
	Years   Unit = 365 * Days
)

var descendingUnits = []Unit{Years, Months, Weeks, Days, Hours, Minutes}

// Duration is a user-facing time duration. A user-typed duration keeps the
// unit the user chose verbatim, auto-derived durations use the largest unit
// that fits (see DurationFromMillis).
type Duration struct {
	Unit  Unit
	Value float64
}

func (d Duration) Millis() int64 {
	return int64(float64(d.Unit) * d.Value)
}

func (d Duration) Seconds() int64 {
	return d.Millis() / 1000
}

// DurationFromMillis expresses a millisecond value in the largest whole unit
// that is less than or equal to it, falling back to minutes.
func DurationFromMillis(millis int64) Duration {
	for _, unit := range descendingUnits {
		if int64(unit) <= millis {
			return Duration{Unit: unit, Value: float64(millis) / float64(unit)}
		}
	}

	return Duration{Unit: Minutes, Value: float64(millis) / float64(Minutes)}
}
