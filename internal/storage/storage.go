package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/acta-lineup/internal/export"
	"github.com/pfrederiksen/acta-lineup/internal/lineup"
)

// Storage handles persistence of exports in a data directory
type Storage struct {
	dataDir string
}

// New creates a Storage rooted at dataDir, creating it if needed. A leading
// "~/" is expanded to the home directory.
func New(dataDir string) (*Storage, error) {
	if strings.TrimSpace(dataDir) == "" {
		return nil, fmt.Errorf("data directory is required")
	}

	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Dir returns the resolved data directory
func (s *Storage) Dir() string {
	return s.dataDir
}

// resolve maps a bare file name into the data directory and leaves paths alone
func (s *Storage) resolve(name string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return filepath.Join(s.dataDir, name)
}

// SaveExport writes doc in the given format and returns the file path
func (s *Storage) SaveExport(doc export.Document, format export.Format) (string, error) {
	data, err := export.Render(doc, format)
	if err != nil {
		return "", fmt.Errorf("encoding export: %w", err)
	}

	path := filepath.Join(s.dataDir, export.Filename(doc, format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}

	return path, nil
}

// LoadExport reads a JSON export. name is either a file in the data directory
// or a path.
func (s *Storage) LoadExport(name string) (export.Document, error) {
	f, err := os.Open(s.resolve(name))
	if err != nil {
		return export.Document{}, fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	return export.ReadJSON(f)
}

// SaveRoster writes a scraped roster as "<home>-vs-<away>.roster.json"
func (s *Storage) SaveRoster(roster *lineup.Roster) (string, error) {
	data, err := json.MarshalIndent(roster, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding roster: %w", err)
	}

	doc := export.Document{HomeTeam: &roster.HomeTeam, AwayTeam: &roster.AwayTeam}
	name := strings.TrimSuffix(export.Filename(doc, export.FormatJSON), ".json") + ".roster.json"
	path := filepath.Join(s.dataDir, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing roster: %w", err)
	}

	return path, nil
}

// LoadRoster reads a roster saved by SaveRoster (or any {homeTeam, awayTeam} JSON)
func (s *Storage) LoadRoster(name string) (*lineup.Roster, error) {
	data, err := os.ReadFile(s.resolve(name))
	if err != nil {
		return nil, fmt.Errorf("reading roster: %w", err)
	}

	var roster lineup.Roster
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}
	roster.AssignMissingIDs()
	if err := roster.Validate(); err != nil {
		return nil, fmt.Errorf("invalid roster: %w", err)
	}

	return &roster, nil
}
