package catalog

import "fmt"

// Pathway groups factors for display. It never takes part in placement validation.
type Pathway string

const (
	PathwayIntrinsic    Pathway = "intrinsic"
	PathwayExtrinsic    Pathway = "extrinsic"
	PathwayCommon       Pathway = "common"
	PathwayFibrinolysis Pathway = "fibrinolysis"
	PathwayRegulatory   Pathway = "regulatory"
)

// AllPathways returns all pathways in display order.
func AllPathways() []Pathway {
	return []Pathway{
		PathwayExtrinsic,
		PathwayIntrinsic,
		PathwayCommon,
		PathwayRegulatory,
		PathwayFibrinolysis,
	}
}

// Valid reports whether p is one of the known pathways.
func (p Pathway) Valid() bool {
	switch p {
	case PathwayIntrinsic, PathwayExtrinsic, PathwayCommon, PathwayFibrinolysis, PathwayRegulatory:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for a pathway.
func (p Pathway) DisplayName() string {
	switch p {
	case PathwayIntrinsic:
		return "Intrinsic"
	case PathwayExtrinsic:
		return "Extrinsic"
	case PathwayCommon:
		return "Common"
	case PathwayFibrinolysis:
		return "Fibrinolysis"
	case PathwayRegulatory:
		return "Regulatory"
	default:
		return string(p)
	}
}

// Point is a board coordinate. Targets and drop points share one coordinate space.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Within reports whether p lies inside the square window of half-width tol
// around q. Only q and tol take part in arithmetic, so p may be any value.
func (p Point) Within(q Point, tol int) bool {
	return q.X-tol <= p.X && p.X <= q.X+tol &&
		q.Y-tol <= p.Y && p.Y <= q.Y+tol
}

// Factor is one placeable token of the pathway. Factors are read-only after
// the catalog is built; session state lives in the engine.
type Factor struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Pathway     Pathway  `json:"pathway" yaml:"pathway"`
	Target      Point    `json:"target" yaml:"target"`
	Concept     string   `json:"concept" yaml:"concept"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Clinical    string   `json:"clinical,omitempty" yaml:"clinical,omitempty"`
	Antagonists []string `json:"antagonists,omitempty" yaml:"antagonists,omitempty"`
}
