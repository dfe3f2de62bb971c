package editor

// Session tracks which files are open in the editor and which one is
// active. It is UI state only: it never reaches the server, only local
// snapshots. Order of OpenFiles is the order tabs were opened in.
type Session struct {
	ActiveFile string   `json:"activeFile,omitempty"`
	OpenFiles  []string `json:"openFiles"`
	Autosave   bool     `json:"autosave"`
}

// NewSession creates an empty session with autosave enabled.
func NewSession() *Session {
	return &Session{OpenFiles: []string{}, Autosave: true}
}

// SelectFile makes id the active file, opening a tab for it if one is
// not already open.
func (s *Session) SelectFile(id string) {
	s.ActiveFile = id
	for _, open := range s.OpenFiles {
		if open == id {
			return
		}
	}
	s.OpenFiles = append(s.OpenFiles, id)
}

// CloseTab removes id from the open tabs. If it was active, activation
// falls back to the last remaining tab, or to none.
func (s *Session) CloseTab(id string) {
	for i, open := range s.OpenFiles {
		if open == id {
			s.OpenFiles = append(s.OpenFiles[:i], s.OpenFiles[i+1:]...)
			break
		}
	}
	if s.ActiveFile == id {
		if n := len(s.OpenFiles); n > 0 {
			s.ActiveFile = s.OpenFiles[n-1]
		} else {
			s.ActiveFile = ""
		}
	}
}

// IsOpen reports whether a tab for id is open.
func (s *Session) IsOpen(id string) bool {
	for _, open := range s.OpenFiles {
		if open == id {
			return true
		}
	}
	return false
}

// Reset clears all tabs and the active file.
func (s *Session) Reset() {
	s.ActiveFile = ""
	s.OpenFiles = s.OpenFiles[:0]
}
