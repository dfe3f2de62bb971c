package editor

import (
	"testing"
)

func TestSessionSelectFile(t *testing.T) {
	s := NewSession()

	s.SelectFile("a")
	s.SelectFile("b")
	s.SelectFile("a") // already open, must not duplicate

	if s.ActiveFile != "a" {
		t.Errorf("active = %q, want a", s.ActiveFile)
	}
	if len(s.OpenFiles) != 2 {
		t.Errorf("open tabs = %v, want [a b]", s.OpenFiles)
	}
}

func TestSessionCloseTab(t *testing.T) {
	tests := []struct {
		name       string
		open       []string
		active     string
		close      string
		wantActive string
		wantOpen   int
	}{
		{
			name:       "closing inactive tab keeps active",
			open:       []string{"a", "b", "c"},
			active:     "c",
			close:      "a",
			wantActive: "c",
			wantOpen:   2,
		},
		{
			name:       "closing active falls back to last remaining",
			open:       []string{"a", "b", "c"},
			active:     "c",
			close:      "c",
			wantActive: "b",
			wantOpen:   2,
		},
		{
			name:       "closing the only tab clears active",
			open:       []string{"a"},
			active:     "a",
			close:      "a",
			wantActive: "",
			wantOpen:   0,
		},
		{
			name:       "closing unknown tab is a no-op",
			open:       []string{"a"},
			active:     "a",
			close:      "x",
			wantActive: "a",
			wantOpen:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			for _, id := range tt.open {
				s.SelectFile(id)
			}
			s.ActiveFile = tt.active

			s.CloseTab(tt.close)

			if s.ActiveFile != tt.wantActive {
				t.Errorf("active = %q, want %q", s.ActiveFile, tt.wantActive)
			}
			if len(s.OpenFiles) != tt.wantOpen {
				t.Errorf("open tabs = %v, want %d entries", s.OpenFiles, tt.wantOpen)
			}
		})
	}
}
