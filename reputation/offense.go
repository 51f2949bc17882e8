package reputation

// Offense classifies a detected misbehavior for slashing.
type Offense string

const (
	OffenseMinor    Offense = "minor"
	OffenseMajor    Offense = "major"
	OffenseCritical Offense = "critical"
)

const defaultSeverity = 0.1

var defaultSeverities = map[Offense]float64{
	OffenseMinor:    0.1,
	OffenseMajor:    0.5,
	OffenseCritical: 1.0,
}

func (of Offense) String() string {
	return string(of)
}

// Severity is the reputation cost of the offense; unknown offense
// classes cost the minor amount.
func (of Offense) Severity() float64 {
	if s, found := defaultSeverities[of]; found {
		return s
	}

	return defaultSeverity
}
