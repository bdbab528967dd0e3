package main

import ("log"; "fmt"; "os"; "path"; "path/filepath"; "strings"; "gopkg.in/yaml.v3")

// Site-wide configuration, read once from site.yaml at the content root.
// It is never mutated after loading; everything that renders receives it as
// an explicit argument.
type SiteConfig struct {
	Title string `yaml:"title"`
	BaseURL string `yaml:"base_url"`
	Menu []MenuEntry `yaml:"menu"`
}

// Absolute content folder path, without a trailing slash. Set once by the
// cli actions before anything touches the filesystem.
var contentPath string
var onlyPublic = getEnvValue("ONLY_PUBLIC")
var indexPage = getEnvValue("INDEX")

func loadSiteConfig() *SiteConfig {
	data, err := os.ReadFile(filepath.Join(contentPath, "site.yaml")); if err != nil {log.Fatal(err)}
	conf := &SiteConfig{}
	if err := yaml.Unmarshal(data, conf); err != nil {log.Fatal(fmt.Errorf("site.yaml: %w", err))}
	// A menu entry without a label cannot be matched against any page.
	for i, entry := range conf.Menu {
		if entry.Label == "" {log.Fatal(fmt.Errorf("site.yaml: menu entry %d has no label", i+1))}
	}
	return conf
}

func getEnvValue(key string)string{
	// If environment variable has a value, return it.
	if os.Getenv(key) != "" {return os.Getenv(key)}
	// If no value is assigned to the environment variable, use the default one or give an error.
	switch key {
	case "CONTENT_FOLDER": log.Fatal(fmt.Errorf("Please specify the content folder path with CONTENT_FOLDER environment variable."))
	case "INDEX": return "/index.md"
	case "PORT": return "9700"
	case "ONLY_PUBLIC": return "no"
	case "CACHE_FOLDER": return ".lore-cache"
	case "CONTENT_SEARCH": return "true"
	//The location of the page templates. Relative to the CONTENT_FOLDER. Default is lore.
	case "TEMPLATES": return path.Join(contentPath, "lore")
	}
	return ""
}

func getContentPath() string {
	p := getEnvValue("CONTENT_FOLDER")
	// Replaces ~ with the user's home directory.
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir(); if err != nil {log.Fatal(err)}
		p = filepath.Join(home, p[2:])
	}
	// Converts a relative path to an absolute path.
	p, err := filepath.Abs(p); if err != nil {log.Fatal(err)}
	// Follow the system links and get the real content folder path.
	p, err = filepath.EvalSymlinks(p); if err != nil {log.Fatal(err)}
	return strings.TrimSuffix(p, "/")
}
