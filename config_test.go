package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSiteConfig(t *testing.T) {
	dir := withContentDir(t)
	conf := `title: Programming Concepts
base_url: https://notes.example.org
menu:
  - label: Home
    path: ""
  - label: Immutability
    path: immutability
  - label: Streams
    path: streams
`
	if err := os.WriteFile(filepath.Join(dir, "site.yaml"), []byte(conf), 0644); err != nil {
		t.Fatal(err)
	}

	got := loadSiteConfig()
	if got.Title != "Programming Concepts" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.BaseURL != "https://notes.example.org" {
		t.Errorf("BaseURL = %q", got.BaseURL)
	}
	// The menu keeps its configured order verbatim.
	wantLabels := []string{"Home", "Immutability", "Streams"}
	if len(got.Menu) != len(wantLabels) {
		t.Fatalf("Menu has %d entries, want %d", len(got.Menu), len(wantLabels))
	}
	for i, label := range wantLabels {
		if got.Menu[i].Label != label {
			t.Errorf("Menu[%d].Label = %q, want %q", i, got.Menu[i].Label, label)
		}
	}
	if got.Menu[0].Path != "" || got.Menu[1].Path != "immutability" {
		t.Errorf("menu paths not preserved: %+v", got.Menu)
	}
}

func TestGetEnvValueDefaults(t *testing.T) {
	for key, want := range map[string]string{
		"PORT": "9700", "ONLY_PUBLIC": "no", "INDEX": "/index.md",
		"CACHE_FOLDER": ".lore-cache", "CONTENT_SEARCH": "true",
	} {
		t.Setenv(key, "")
		if got := getEnvValue(key); got != want {
			t.Errorf("getEnvValue(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestGetEnvValueOverride(t *testing.T) {
	t.Setenv("PORT", "8080")
	if got := getEnvValue("PORT"); got != "8080" {
		t.Errorf("getEnvValue(PORT) = %q, want the env value", got)
	}
}
