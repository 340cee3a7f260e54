package learnpath

// LearningPath is the ordered collection of problems returned for one
// generation request, with an overall narrative. Order is significant:
// problems are presented as a progression.
type LearningPath struct {
	// Description is the narrative for the whole path.
	// Empty for responses in the legacy shape.
	Description string `json:"description" yaml:"description"`

	// Problems in presentation order.
	Problems []Problem `json:"problems" yaml:"problems"`
}

// Problem is a single practice problem within a LearningPath.
type Problem struct {
	Title string `json:"title" yaml:"title"`

	// Level is a positive integer. Problems are expected, but not
	// required, to appear in ascending level order.
	Level int `json:"level" yaml:"level"`

	Concepts      []string  `json:"concepts" yaml:"concepts"`
	Description   string    `json:"description" yaml:"description"`
	Prerequisites []string  `json:"prerequisites" yaml:"prerequisites"`
	Examples      []Example `json:"examples" yaml:"examples"`

	// Hints is optional and may be empty.
	Hints []string `json:"hints" yaml:"hints"`
}

// Example is a worked input/output pair attached to a Problem.
type Example struct {
	Input       string `json:"input" yaml:"input"`
	Output      string `json:"output" yaml:"output"`
	Explanation string `json:"explanation" yaml:"explanation"`
}

// Ascending reports whether the problems appear in non-decreasing level order.
func (lp *LearningPath) Ascending() bool {
	for i := 1; i < len(lp.Problems); i++ {
		if lp.Problems[i].Level < lp.Problems[i-1].Level {
			return false
		}
	}
	return true
}

// normalize replaces nil slices with empty ones so that a parsed path
// compares equal to the result of parsing its own encoding.
func (lp *LearningPath) normalize() {
	if lp.Problems == nil {
		lp.Problems = []Problem{}
	}
	for i := range lp.Problems {
		p := &lp.Problems[i]
		if p.Concepts == nil {
			p.Concepts = []string{}
		}
		if p.Prerequisites == nil {
			p.Prerequisites = []string{}
		}
		if p.Examples == nil {
			p.Examples = []Example{}
		}
		if p.Hints == nil {
			p.Hints = []string{}
		}
	}
}
