package main

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/decker502/tdsim/pkg/sim"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "a.yaml", []string{"a.yaml"}},
		{"multiple", "a.yaml,b.yaml", []string{"a.yaml", "b.yaml"}},
		{"spaces and empties", " a.yaml , ,b.yaml,", []string{"a.yaml", "b.yaml"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrintResult(t *testing.T) {
	tests := []struct {
		name    string
		result  sim.RunResult
		outcome string
	}{
		{"victory", sim.RunResult{LevelID: "meadow", Victory: true}, "victory"},
		{"defeat", sim.RunResult{LevelID: "meadow", GameOver: true}, "defeat"},
		{"timeout", sim.RunResult{LevelID: "meadow", TimedOut: true}, "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printResult(&buf, tt.result)
			if !strings.Contains(buf.String(), tt.outcome) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.outcome)
			}
		})
	}

	var buf bytes.Buffer
	printResult(&buf, sim.RunResult{
		LevelID:  "meadow",
		Rejected: []sim.RejectedAction{{At: 2, Action: "place", Label: "b", Reason: "insufficient gold"}},
	})
	if !strings.Contains(buf.String(), `rejected place "b"`) {
		t.Errorf("rejected action not printed: %q", buf.String())
	}
}
