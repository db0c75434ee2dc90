package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/mail"
	"os"
	"path/filepath"

	"github.com/dyluth/santa/internal/draw"
	"gopkg.in/yaml.v3"
)

var (
	// ErrConfigNotFound is returned by Load when the path does not name a file.
	ErrConfigNotFound = errors.New("game config not found")

	// ErrConfigMalformed is returned by Load when the document cannot be parsed
	// or is missing required fields.
	ErrConfigMalformed = errors.New("game config malformed")
)

// Built-in notification defaults, used when neither the game nor the process
// settings provide a value.
const (
	DefaultNotificationFrom    = "Secret Santa <secretsanta@example.com>"
	DefaultNotificationSubject = "Secret Santa"
)

// Document is the top-level YAML document. The game lives under the
// `secretsanta` key; `secret-santa` is accepted for older files.
type Document struct {
	SecretSanta *Game `yaml:"secretsanta"`
	Legacy      *Game `yaml:"secret-santa"`
}

// Game represents one Secret Santa game: who plays, who may not give to whom,
// and how the results are announced.
type Game struct {
	Name         string              `yaml:"name"`
	Participants []Player            `yaml:"participants"`
	Exclusions   []Exclusion         `yaml:"exclusions,omitempty"`
	Notification *NotificationConfig `yaml:"notification,omitempty"`

	// dir is the directory of the config file; template_file is relative to it
	dir string
}

// Player is a participant with a contact address
type Player struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

func (p Player) String() string {
	return p.Name
}

// Exclusion forbids From giving to To. Reverse forbids the opposite direction too.
type Exclusion struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Reverse bool   `yaml:"reverse,omitempty"`
}

// NotificationConfig controls the message sent to each giver.
// Template (inline text) wins over TemplateFile.
type NotificationConfig struct {
	From         string `yaml:"from,omitempty"`
	Subject      string `yaml:"subject,omitempty"`
	TemplateFile string `yaml:"template_file,omitempty"`
	Template     string `yaml:"template,omitempty"`
}

// Validate performs strict validation on the game
func (g *Game) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("name is required")
	}

	if len(g.Participants) < 2 {
		return fmt.Errorf("at least 2 participants are required (got %d)", len(g.Participants))
	}

	seen := make(map[string]bool, len(g.Participants))
	for i, p := range g.Participants {
		if err := p.Validate(i); err != nil {
			return err
		}
		if seen[p.Name] {
			return &draw.DuplicateParticipantError{Name: p.Name}
		}
		seen[p.Name] = true
	}

	for i, e := range g.Exclusions {
		if e.From == "" || e.To == "" {
			return fmt.Errorf("exclusion %d: both 'from' and 'to' are required", i+1)
		}
	}

	if g.Notification == nil {
		g.Notification = &NotificationConfig{}
	}

	return nil
}

// Validate performs validation on a single player. index is its position in
// the participants list, used in messages.
func (p *Player) Validate(index int) error {
	if p.Name == "" {
		return fmt.Errorf("participant %d: name is required", index+1)
	}

	if p.Email == "" {
		return fmt.Errorf("participant '%s': email is required", p.Name)
	}

	if _, err := mail.ParseAddress(p.Email); err != nil {
		return fmt.Errorf("participant '%s': invalid email '%s': %w", p.Name, p.Email, err)
	}

	return nil
}

// ParticipantNames returns the participant names in config order, as used by
// the draw.
func (g *Game) ParticipantNames() []string {
	names := make([]string, 0, len(g.Participants))
	for _, p := range g.Participants {
		names = append(names, p.Name)
	}
	return names
}

// DrawExclusions flattens the exclusions into directed pairs, expanding
// reversible entries into both directions. Order follows the config and
// duplicates are kept.
func (g *Game) DrawExclusions() []draw.Pair {
	pairs := make([]draw.Pair, 0, len(g.Exclusions))
	for _, e := range g.Exclusions {
		pair := draw.Pair{From: e.From, To: e.To}
		pairs = append(pairs, pair)
		if e.Reverse {
			pairs = append(pairs, pair.Reversed())
		}
	}
	return pairs
}

// UnknownExclusions returns exclusions that name someone who is not playing.
// They are harmless to the draw but usually indicate a typo.
func (g *Game) UnknownExclusions() []Exclusion {
	known := make(map[string]bool, len(g.Participants))
	for _, p := range g.Participants {
		known[p.Name] = true
	}

	var unknown []Exclusion
	for _, e := range g.Exclusions {
		if !known[e.From] || !known[e.To] {
			unknown = append(unknown, e)
		}
	}
	return unknown
}

// Player looks up a participant by name.
func (g *Game) Player(name string) (Player, bool) {
	for _, p := range g.Participants {
		if p.Name == name {
			return p, true
		}
	}
	return Player{}, false
}

// Directory maps participant names to email addresses.
func (g *Game) Directory() map[string]string {
	dir := make(map[string]string, len(g.Participants))
	for _, p := range g.Participants {
		dir[p.Name] = p.Email
	}
	return dir
}

// ApplyDefaults fills the notification sender and subject. Values from the
// game win, then the given defaults, then the built-in ones.
func (g *Game) ApplyDefaults(from, subject string) {
	if g.Notification == nil {
		g.Notification = &NotificationConfig{}
	}

	if g.Notification.From == "" {
		g.Notification.From = from
	}
	if g.Notification.From == "" {
		g.Notification.From = DefaultNotificationFrom
	}

	if g.Notification.Subject == "" {
		g.Notification.Subject = subject
	}
	if g.Notification.Subject == "" {
		g.Notification.Subject = DefaultNotificationSubject
	}
}

// TemplatePath returns the template file resolved against the config file's
// directory, or "" when the game uses an inline or the built-in template.
func (g *Game) TemplatePath() string {
	if g.Notification == nil || g.Notification.Template != "" || g.Notification.TemplateFile == "" {
		return ""
	}
	if filepath.IsAbs(g.Notification.TemplateFile) {
		return g.Notification.TemplateFile
	}
	return filepath.Join(g.dir, g.Notification.TemplateFile)
}

// Load reads and validates a game config from the specified path
func Load(path string) (*Game, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrConfigNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	game, err := Parse(data)
	if err != nil {
		return nil, err
	}
	game.dir = filepath.Dir(path)

	return game, nil
}

// Parse decodes and validates a game config document.
func Parse(data []byte) (*Game, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %w", ErrConfigMalformed, err)
	}

	game := doc.SecretSanta
	if game == nil {
		game = doc.Legacy
	}
	if game == nil {
		return nil, fmt.Errorf("%w: missing 'secretsanta' section", ErrConfigMalformed)
	}

	if err := game.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigMalformed, err)
	}

	return game, nil
}
