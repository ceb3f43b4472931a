package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Snapshot is the exported view of a session, one file per session.
type Snapshot struct {
	SessionID   string        `yaml:"session_id"`
	Owner       string        `yaml:"owner"`
	AudioPath   string        `yaml:"audio_path"`
	GeneratedAt time.Time     `yaml:"generated_at"`
	State       State         `yaml:"state"`
	History     []Interaction `yaml:"interaction_history"`
}

// ExportYAML writes a YAML snapshot of the session under outputsRoot and
// returns the file path.
func ExportYAML(outputsRoot string, sess *Session) (string, error) {
	if err := os.MkdirAll(outputsRoot, 0o755); err != nil {
		return "", fmt.Errorf("session: export dir: %w", err)
	}
	path := filepath.Join(outputsRoot, sess.ID+".yaml")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("session: export %s: %w", sess.ID, err)
	}
	defer f.Close()

	snap := Snapshot{
		SessionID:   sess.ID,
		Owner:       sess.Owner,
		AudioPath:   sess.State.AudioPath,
		GeneratedAt: time.Now(),
		State:       sess.State,
		History:     sess.History,
	}
	enc := yaml.NewEncoder(f)
	defer enc.Close()
	if err := enc.Encode(snap); err != nil {
		return "", fmt.Errorf("session: encode %s: %w", sess.ID, err)
	}
	return path, nil
}
