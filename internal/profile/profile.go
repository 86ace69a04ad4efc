// Package profile manages the reviewer's persistent cliptag profile.
// The profile is stored at ~/.config/cliptag/profile.json and is created
// once via the interactive setup flow, then used to attribute every label
// revision the reviewer writes.
package profile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/fakeyudi/cliptag/internal/annotation"
)

// Profile holds reviewer-level preferences set during first-run setup.
type Profile struct {
	Name       string `json:"name"`
	ReviewerID string `json:"reviewer_id"`
	ExportDir  string `json:"export_dir"` // default archive output dir
}

// Author returns the attribution written into label revisions.
func (p *Profile) Author() annotation.Author {
	if p == nil {
		return annotation.Anonymous
	}
	a := annotation.Author{ID: p.ReviewerID, Name: p.Name}
	if a.ID == "" {
		a.ID = annotation.Anonymous.ID
	}
	if a.Name == "" {
		a.Name = annotation.Anonymous.Name
	}
	return a
}

// profilePath returns the path to the profile file.
func profilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profile.json"), nil
}

// ConfigDir returns the cliptag config directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cliptag"), nil
}

// Exists reports whether a profile file is present on disk.
func Exists() bool {
	p, err := profilePath()
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Load reads the profile from disk. Returns an error if the file is missing or malformed.
func Load() (*Profile, error) {
	p, err := profilePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("profile not found, run 'cliptag setup' to configure: %w", err)
	}
	var prof Profile
	if err := json.Unmarshal(data, &prof); err != nil {
		return nil, fmt.Errorf("malformed profile at %s: %w", p, err)
	}
	return &prof, nil
}

// Save writes the profile to disk, creating the config directory if needed.
func Save(prof *Profile) error {
	p, err := profilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prof, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// RunSetup runs the interactive setup wizard on in/out and returns the
// resulting profile. If existing is non-nil, it is used as the default for
// each prompt (edit mode).
func RunSetup(existing *Profile, in io.Reader, out io.Writer) (*Profile, error) {
	r := bufio.NewReader(in)

	ask := func(prompt, defaultVal string) (string, error) {
		if defaultVal != "" {
			fmt.Fprintf(out, "%s [%s]: ", prompt, defaultVal)
		} else {
			fmt.Fprintf(out, "%s: ", prompt)
		}
		line, err := r.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultVal, nil
		}
		return line, nil
	}

	prof := &Profile{
		Name:      currentUserName(),
		ExportDir: ".",
	}
	if existing != nil {
		*prof = *existing
	}
	if prof.ReviewerID == "" {
		prof.ReviewerID = uuid.NewString()[:8]
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  ┌─────────────────────────────────┐")
	fmt.Fprintln(out, "  │   cliptag · reviewer setup      │")
	fmt.Fprintln(out, "  └─────────────────────────────────┘")
	fmt.Fprintln(out)

	var err error

	prof.Name, err = ask("  Your name (stored with every label)", prof.Name)
	if err != nil {
		return nil, err
	}

	prof.ReviewerID, err = ask("  Reviewer id", prof.ReviewerID)
	if err != nil {
		return nil, err
	}

	prof.ExportDir, err = ask("  Default export directory", prof.ExportDir)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(out)
	return prof, nil
}

// currentUserName suggests the OS account name as the reviewer name.
func currentUserName() string {
	if u, err := user.Current(); err == nil {
		if u.Name != "" {
			return u.Name
		}
		return u.Username
	}
	return ""
}
