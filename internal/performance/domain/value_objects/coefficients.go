package value_objects

import "errors"

var (
	ErrImportanceOutOfRange = errors.New("importance coefficient must be between 0.5 and 1.5")
	ErrDifficultyOutOfRange = errors.New("difficulty coefficient must be between 0.8 and 1.5")
	ErrQualityOutOfRange    = errors.New("quality coefficient must be between 0.0 and 1.2")
)

// Coefficients is a task's resolved importance/difficulty pair. Subtasks use
// their parent's pair, resolved once at computation time, never lazily.
type Coefficients struct {
	importance float64
	difficulty float64
}

// NewCoefficients validates and creates an importance/difficulty pair.
func NewCoefficients(importance, difficulty float64) (Coefficients, error) {
	if importance < 0.5 || importance > 1.5 {
		return Coefficients{}, ErrImportanceOutOfRange
	}
	if difficulty < 0.8 || difficulty > 1.5 {
		return Coefficients{}, ErrDifficultyOutOfRange
	}
	return Coefficients{importance: importance, difficulty: difficulty}, nil
}

// DefaultCoefficients returns the neutral pair used before approval fixes them.
func DefaultCoefficients() Coefficients {
	return Coefficients{importance: 1.0, difficulty: 1.0}
}

func (c Coefficients) Importance() float64 { return c.importance }
func (c Coefficients) Difficulty() float64 { return c.difficulty }

// Product returns I x D, the value compared against the KPI eligibility cutoff.
func (c Coefficients) Product() float64 {
	return c.importance * c.difficulty
}

// Quality is the 0.0-1.2 multiplier the reviewer sets at acceptance time.
type Quality struct {
	value float64
}

// NewQuality validates and creates a quality coefficient.
func NewQuality(value float64) (Quality, error) {
	if value < 0.0 || value > 1.2 {
		return Quality{}, ErrQualityOutOfRange
	}
	return Quality{value: value}, nil
}

func (q Quality) Value() float64 { return q.value }
