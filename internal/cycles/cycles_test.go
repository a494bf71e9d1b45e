package cycles

import (
	"reflect"
	"testing"
)

func TestFindTriangle(t *testing.T) {
	graph := map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {"A"},
	}
	got := Find(graph, 0)
	want := [][]string{{"A", "B", "C"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Find = %v, want %v", got, want)
	}
}

func TestFindReportsEachCycleOnce(t *testing.T) {
	// Two-node loop is reachable from both ends; it must appear once.
	graph := map[string][]string{
		"A": {"B"},
		"B": {"A"},
	}
	got := Find(graph, 0)
	want := [][]string{{"A", "B"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Find = %v, want %v", got, want)
	}
}

func TestFindIgnoresSelfLoops(t *testing.T) {
	graph := map[string][]string{"A": {"A", "B"}, "B": {}}
	if got := Find(graph, 0); len(got) != 0 {
		t.Errorf("self-loop must not count as a cycle, got %v", got)
	}
}

func TestFindRespectsMaxLen(t *testing.T) {
	graph := map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {"D"},
		"D": {"A"},
	}
	if got := Find(graph, 3); len(got) != 0 {
		t.Errorf("4-cycle should be cut off at maxLen=3, got %v", got)
	}
	if got := Find(graph, 4); len(got) != 1 {
		t.Errorf("4-cycle should be found at maxLen=4, got %v", got)
	}
}

func TestFindMultipleCyclesDeterministic(t *testing.T) {
	graph := map[string][]string{
		"A": {"B"},
		"B": {"A", "C"},
		"C": {"B", "A"},
	}
	got := Find(graph, 0)
	want := [][]string{
		{"A", "B"},
		{"B", "C"},
		{"A", "B", "C"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Find = %v, want %v", got, want)
	}
}

func TestFindEmptyGraph(t *testing.T) {
	if got := Find(map[string][]string{}, 0); len(got) != 0 {
		t.Errorf("empty graph should have no cycles, got %v", got)
	}
}
