package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestPlanJSONOmitsPendingWhenClosed(t *testing.T) {
	p := Plan{
		Name: "Keep",
		Grid: Grid{CellSize: 20, Unit: "ft"},
		Chambers: []Chamber{
			{ID: 0, Name: "Hall", Walls: []Wall{
				{ID: 0, P1: Point{0, 0}, P2: Point{4, 0}},
				{ID: 1, P1: Point{4, 0}, P2: Point{0, 0}},
			}},
			{ID: 1, Name: "Stub", First: &Point{X: 3, Y: 3}, Walls: []Wall{}},
		},
	}

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if strings.Count(s, `"first"`) != 1 {
		t.Fatalf("expected exactly one pending vertex in %s", s)
	}
	if strings.Contains(s, `"doors"`) {
		t.Fatalf("empty doors should be omitted: %s", s)
	}
	var got Plan
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Chambers[1].First == nil || *got.Chambers[1].First != (Point{3, 3}) {
		t.Fatalf("pending vertex lost: %+v", got.Chambers[1])
	}
}
