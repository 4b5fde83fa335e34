package vm

import "testing"

func TestSkipConditional(t *testing.T) {
	seq := Instructions(
		"se x allora", // 0
		"out a",       // 1
		"se y allora", // 2
		"out b",       // 3
		"altrimenti",  // 4
		"out c",       // 5
		"end",         // 6
		"altrimenti",  // 7
		"out d",       // 8
		"end",         // 9
		"out e",       // 10
	)
	tests := []struct {
		name string
		flat bool
		pc   int
		want int
	}{
		{"nested else is skipped", false, 1, 8},
		{"flat stops at first else", true, 1, 5},
		{"inner block", false, 3, 5},
		{"inner block flat", true, 3, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := scanner{flat: tt.flat}.skipConditional(seq, tt.pc)
			if !ok || got != tt.want {
				t.Errorf("skipConditional(%d) = %d, %v, want %d", tt.pc, got, ok, tt.want)
			}
		})
	}
}

func TestSkipElse(t *testing.T) {
	seq := Instructions("altrimenti", "se x allora", "out a", "end", "out b", "end", "out c")
	if got, ok := (scanner{}).skipElse(seq, 1); !ok || got != 6 {
		t.Errorf("nesting skipElse = %d, %v, want 6", got, ok)
	}
	if got, ok := (scanner{flat: true}).skipElse(seq, 1); !ok || got != 4 {
		t.Errorf("flat skipElse = %d, %v, want 4", got, ok)
	}
}

func TestCaptureBlock(t *testing.T) {
	seq := Instructions("def f", "out a", "se x allora", "f", "end", "end", "out b")

	body, next, ok := scanner{}.captureBlock(seq, 1)
	if !ok || next != 6 || len(body) != 4 {
		t.Fatalf("captureBlock = %d instructions, next %d, %v; want 4, 6, true", len(body), next, ok)
	}
	if body[3].Text != "end" {
		t.Errorf("last body instruction = %q, want inner end", body[3].Text)
	}

	body, next, ok = scanner{flat: true}.captureBlock(seq, 1)
	if !ok || next != 5 || len(body) != 3 {
		t.Errorf("flat captureBlock = %d instructions, next %d, %v; want 3, 5, true", len(body), next, ok)
	}
}

func TestScanUnterminated(t *testing.T) {
	seq := Instructions("se x allora", "out a", "se y allora", "end")
	if got, ok := (scanner{}).skipConditional(seq, 1); ok || got != len(seq) {
		t.Errorf("skipConditional = %d, %v, want %d, false", got, ok, len(seq))
	}
	body, next, ok := scanner{}.captureBlock(Instructions("def f", "out a"), 1)
	if ok || next != 2 || len(body) != 1 {
		t.Errorf("captureBlock = %v, %d, %v", body, next, ok)
	}
}
