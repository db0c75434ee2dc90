package scaffold

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dyluth/santa/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

// DefaultConfigFile is the config written when no path is given.
const DefaultConfigFile = "santa.yml"

// EnvExampleFile is written next to the config.
const EnvExampleFile = ".env.example"

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize writes an example game config to configPath and a settings
// template next to it. With force, existing files are replaced.
// Returns the paths it wrote.
func Initialize(configPath string, force bool, w io.Writer) ([]string, error) {
	files, err := getTemplateFiles(configPath)
	if err != nil {
		return nil, err
	}

	if force {
		if err := handleForce(files, w); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", filepath.Dir(configPath), err)
	}

	if err := writeFiles(files); err != nil {
		return nil, err
	}

	if err := validateCreatedConfig(configPath); err != nil {
		return nil, err
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths, nil
}

// handleForce removes files that are about to be replaced
func handleForce(files []FileInfo, w io.Writer) error {
	for _, f := range files {
		if _, err := os.Stat(f.Path); err != nil {
			continue
		}
		fmt.Fprintf(w, "⚠️  Removing existing %s...\n", f.Path)
		if err := os.Remove(f.Path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", f.Path, err)
		}
	}
	return nil
}

// getTemplateFiles reads the embedded templates and decides where they go
func getTemplateFiles(configPath string) ([]FileInfo, error) {
	santaYml, err := templatesFS.ReadFile("templates/santa.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read santa.yml template: %w", err)
	}

	envExample, err := templatesFS.ReadFile("templates/env.example.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read .env.example template: %w", err)
	}

	return []FileInfo{
		{Path: configPath, Content: santaYml, Permissions: 0644},
		{Path: filepath.Join(filepath.Dir(configPath), EnvExampleFile), Content: envExample, Permissions: 0600},
	}, nil
}

// writeFiles writes all template files to disk
func writeFiles(files []FileInfo) error {
	for _, file := range files {
		if err := os.WriteFile(file.Path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}
	return nil
}

// validateCreatedConfig loads the written config with the real loader
func validateCreatedConfig(path string) error {
	if _, err := config.Load(path); err != nil {
		return fmt.Errorf("created %s is not a valid game config: %w", path, err)
	}
	return nil
}

// PrintSuccess prints the success message with created files
func PrintSuccess(w io.Writer, paths []string) {
	fmt.Fprintln(w, "\n✅ Created an example Secret Santa game!")
	fmt.Fprintln(w, "\nCreated:")
	for _, p := range paths {
		fmt.Fprintf(w, "  ✓ %s\n", p)
	}
	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintf(w, "  1. Edit %s with your participants and exclusions\n", paths[0])
	fmt.Fprintln(w, "  2. Copy .env.example to .env and add your Mailgun credentials")
	fmt.Fprintf(w, "  3. Rehearse with 'santa %s --dry', then run it for real\n", paths[0])
}
