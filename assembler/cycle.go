package assembler

import (
	"reflect"
	"strings"
	"sync"
)

// cycleDetector is the pluggable graph-walk spec.md §4.10 describes: a
// no-op variant for zero-overhead builds, and an active variant that reports
// one cycle path for each back-edge its depth-first walk of the dependency
// graph meets.
// Neither variant breaks a cycle — spec.md §9 is explicit that cycles are
// reported, never resolved.
type cycleDetector interface {
	detect(graph map[reflect.Type][]reflect.Type) []string
}

type noopCycleDetector struct{}

func (noopCycleDetector) detect(map[reflect.Type][]reflect.Type) []string { return nil }

// activeCycleDetector performs a DFS with visited/in-path marker sets,
// extracting a human-readable slash-arrow path for every back-edge found.
type activeCycleDetector struct{}

func (activeCycleDetector) detect(graph map[reflect.Type][]reflect.Type) []string {
	visited := make(map[reflect.Type]bool, len(graph))
	inPath := make(map[reflect.Type]bool, len(graph))
	var path []reflect.Type
	var cycles []string

	var walk func(t reflect.Type)
	walk = func(t reflect.Type) {
		visited[t] = true
		inPath[t] = true
		path = append(path, t)

		for _, dep := range graph[t] {
			if inPath[dep] {
				cycles = append(cycles, formatCycle(path, dep))
			} else if !visited[dep] {
				walk(dep)
			}
		}

		path = path[:len(path)-1]
		inPath[t] = false
	}

	// Deterministic ordering keeps the report reproducible across runs.
	for _, t := range sortedKeys(graph) {
		if !visited[t] {
			walk(t)
		}
	}

	return cycles
}

func formatCycle(path []reflect.Type, back reflect.Type) string {
	start := 0
	for i, t := range path {
		if t == back {
			start = i
			break
		}
	}
	names := make([]string, 0, len(path)-start+1)
	for _, t := range path[start:] {
		names = append(names, t.String())
	}
	names = append(names, back.String())
	return strings.Join(names, " -> ")
}

func sortedKeys(graph map[reflect.Type][]reflect.Type) []reflect.Type {
	keys := make([]reflect.Type, 0, len(graph))
	for t := range graph {
		keys = append(keys, t)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1].String() > keys[j].String(); j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

var (
	cycleDetectorMu      sync.RWMutex
	currentCycleDetector cycleDetector = noopCycleDetector{}
)

// CycleDetectionMode selects between the no-op and active cycle detector
// variants, a process-wide toggle per spec.md §9 ("this pattern must be
// preserved: it is the reason the hot path has zero overhead when debugging
// is off").
type CycleDetectionMode int

const (
	// CycleDetectionOff is the default: Build never walks the dependency
	// graph looking for cycles.
	CycleDetectionOff CycleDetectionMode = iota
	// CycleDetectionActive walks the full dependency graph at the end of
	// Phase R and logs every cycle found.
	CycleDetectionActive
)

// SetCycleDetection switches the process-wide cycle detector variant.
func SetCycleDetection(mode CycleDetectionMode) {
	cycleDetectorMu.Lock()
	defer cycleDetectorMu.Unlock()
	if mode == CycleDetectionActive {
		currentCycleDetector = activeCycleDetector{}
	} else {
		currentCycleDetector = noopCycleDetector{}
	}
}

func activeDetector() cycleDetector {
	cycleDetectorMu.RLock()
	defer cycleDetectorMu.RUnlock()
	return currentCycleDetector
}
