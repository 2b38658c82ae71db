package catalog

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_Valid(t *testing.T) {
	c := Default()
	if c.Len() != 16 {
		t.Errorf("got %d factors, want 16", c.Len())
	}
	if c.Name() != "coagulation" {
		t.Errorf("got name %q, want coagulation", c.Name())
	}
}

func TestGet(t *testing.T) {
	f, ok := Default().Get("f10")
	if !ok {
		t.Fatal("expected f10 to exist")
	}
	if f.Name != "Factor X" {
		t.Errorf("got name %q, want Factor X", f.Name)
	}
	if f.Pathway != PathwayCommon {
		t.Errorf("got pathway %q, want common", f.Pathway)
	}

	if _, ok := Default().Get("nonexistent"); ok {
		t.Error("expected nonexistent factor to be missing")
	}
	if _, err := Default().MustGet("nonexistent"); err == nil {
		t.Error("expected error for nonexistent factor")
	}
}

func TestFactorsReturnsCopy(t *testing.T) {
	c := Default()
	fs := c.Factors()
	fs[0].Target = Point{X: -1, Y: -1}
	fs[0].Antagonists = append(fs[0].Antagonists[:0], "changed")

	f, _ := c.Get(fs[0].ID)
	if f.Target.X < 0 {
		t.Error("mutating Factors() result changed the catalog")
	}
	if len(f.Antagonists) == 0 || f.Antagonists[0] == "changed" {
		t.Errorf("antagonists were shared with the catalog: %v", f.Antagonists)
	}
}

func TestByPathway(t *testing.T) {
	tests := []struct {
		pathway Pathway
		want    int
	}{
		{PathwayExtrinsic, 2},
		{PathwayIntrinsic, 4},
		{PathwayCommon, 5},
		{PathwayRegulatory, 3},
		{PathwayFibrinolysis, 2},
	}
	total := 0
	for _, tt := range tests {
		got := len(Default().ByPathway(tt.pathway))
		if got != tt.want {
			t.Errorf("ByPathway(%s) = %d, want %d", tt.pathway, got, tt.want)
		}
		total += got
	}
	if total != Default().Len() {
		t.Errorf("pathways cover %d factors, want %d", total, Default().Len())
	}
}

func TestConcepts(t *testing.T) {
	concepts := Default().Concepts()
	if len(concepts) != 7 {
		t.Fatalf("got %d concepts, want 7: %v", len(concepts), concepts)
	}
	if concepts[0] != ConceptInitiation {
		t.Errorf("first concept = %q, want %q", concepts[0], ConceptInitiation)
	}

	m := Default().ConceptMap()
	if m["f8"] != ConceptAmplification {
		t.Errorf("concept of f8 = %q, want %q", m["f8"], ConceptAmplification)
	}
}

func TestPointWithin(t *testing.T) {
	p := Point{X: 100, Y: 100}
	tests := []struct {
		q    Point
		want bool
	}{
		{Point{100, 100}, true},
		{Point{150, 150}, true},
		{Point{50, 50}, true},
		{Point{151, 100}, false},
		{Point{100, 49}, false},
		{Point{math.MinInt + 100, 100}, false},
		{Point{math.MaxInt, math.MinInt}, false},
	}
	for _, tt := range tests {
		if got := tt.q.Within(p, 50); got != tt.want {
			t.Errorf("Within(%s) = %v, want %v", tt.q, got, tt.want)
		}
	}
}

func TestNew_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		factors []Factor
		want    string
	}{
		{"empty", nil, "no factors"},
		{"duplicate id", []Factor{
			{ID: "a", Name: "A", Pathway: PathwayCommon, Target: Point{1, 1}},
			{ID: "a", Name: "A2", Pathway: PathwayCommon, Target: Point{2, 2}},
		}, "duplicate factor ID"},
		{"bad pathway", []Factor{
			{ID: "a", Name: "A", Pathway: "vascular", Target: Point{1, 1}},
		}, "unknown pathway"},
		{"shared target", []Factor{
			{ID: "a", Name: "A", Pathway: PathwayCommon, Target: Point{1, 1}},
			{ID: "b", Name: "B", Pathway: PathwayCommon, Target: Point{1, 1}},
		}, "share target"},
		{"missing name", []Factor{
			{ID: "a", Pathway: PathwayCommon, Target: Point{1, 1}},
		}, "empty name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("test", tt.factors)
			if err == nil {
				t.Fatal("expected error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

const validYAML = `format: v1.2.0
name: mini
factors:
  - id: a
    name: Alpha
    pathway: common
    concept: propagation
    target: {x: 10, y: 20}
  - id: b
    name: Beta
    pathway: regulatory
    target: {x: 110, y: 20}
    antagonists: [a]
`

func TestParse_Valid(t *testing.T) {
	c, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name() != "mini" || c.Len() != 2 {
		t.Fatalf("got %s with %d factors", c.Name(), c.Len())
	}
	b, _ := c.Get("b")
	if b.Target != (Point{X: 110, Y: 20}) {
		t.Errorf("target = %s", b.Target)
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad yaml", "format: [", "parse catalog yaml"},
		{"missing factors", "format: v1.0.0\nname: x\n", "catalog schema"},
		{"negative coordinate", strings.Replace(validYAML, "x: 10", "x: -10", 1), "catalog schema"},
		{"unknown pathway", strings.Replace(validYAML, "pathway: common", "pathway: vascular", 1), "catalog schema"},
		{"bad format", strings.Replace(validYAML, "v1.2.0", "latest", 1), "not a semantic version"},
		{"future major", strings.Replace(validYAML, "v1.2.0", "v2.0.0", 1), "not supported"},
		{"duplicate ids", strings.Replace(validYAML, "id: b", "id: a", 1), "duplicate factor ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(Default())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Len() != Default().Len() {
		t.Errorf("round trip lost factors: %d vs %d", c.Len(), Default().Len())
	}
}
