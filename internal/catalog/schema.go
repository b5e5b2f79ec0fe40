package catalog

import "github.com/MrSnakeDoc/launchpad/internal/launch"

// File is the top-level structure of a catalog document
type File struct {
	Categories []CategoryEntry   `yaml:"categories"`
	Providers  []launch.Provider `yaml:"providers"`
}

// CategoryEntry lists the built-in apps of one fixed category
type CategoryEntry struct {
	ID    string     `yaml:"id"`
	Label string     `yaml:"label"`
	Apps  []AppEntry `yaml:"apps,omitempty"`
}

// AppEntry is one built-in shortcut
type AppEntry struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Icon string `yaml:"icon,omitempty"`
}
