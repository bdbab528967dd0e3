package main

import (
	"fmt"; "io"; "io/fs"; "log"; "os"; "path/filepath"; "strings"; "time"
)

// exportSite writes the rendered site into out as plain files: one
// <page>/index.html per served page, attachments and the static folder
// copied verbatim. The result can be put behind any file server.
func exportSite(conf *SiteConfig, out string) error {
	startTime := time.Now()
	loadTemplates("md"); loadTemplates("solo")
	InitDB(); syncDatabase() // The Query template func works in exported pages too.
	loadAllPages()

	if err := os.MkdirAll(out, 0755); err != nil {return err}

	for relPath := range servedPages {
		page, err := GetPage(relPath)
		if err != nil {return fmt.Errorf("%s: %w", relPath, err)}
		html, err := renderPage(conf, page)
		if err != nil {return err}
		dst := exportPath(out, relPath)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {return err}
		if err := os.WriteFile(dst, html, 0644); err != nil {return err}
	}

	// Attachments are copied; solo templates render instead.
	for att := range servedAttachments {
		dst := filepath.Join(out, filepath.FromSlash(att))
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {return err}
		if tmpl := soloTemplates[att]; tmpl != nil {
			f, err := os.Create(dst); if err != nil {return err}
			err = tmpl.Execute(f, PageData{Site: conf}); f.Close()
			if err != nil {return err}
			continue
		}
		if err := copyFile(SafeJoin(contentPath, att), dst); err != nil {log.Println("Skipping attachment:", att, err)}
	}

	// The static folder is copied as a whole.
	if err := copyDir(filepath.Join(contentPath,"static"), filepath.Join(out,"static")); err != nil && !os.IsNotExist(err) {return err}

	log.Println(len(servedPages), "pages exported to", out, "(in", time.Since(startTime).Milliseconds(), "ms)")
	return nil
}

// exportPath maps a page path to its file in the export folder: the index
// page becomes index.html at the root, everything else <page>/index.html so
// the exported urls stay extensionless.
func exportPath(out, relPath string) string {
	if relPath == indexPage {return filepath.Join(out, "index.html")}
	slug := strings.TrimSuffix(strings.TrimPrefix(relPath, "/"), ".md")
	return filepath.Join(out, filepath.FromSlash(slug), "index.html")
}

func copyFile(src, dst string) error {
	if src == "" {return fmt.Errorf("%s: escapes the content folder", dst)}
	in, err := os.Open(src); if err != nil {return err}
	defer in.Close()
	outFile, err := os.Create(dst); if err != nil {return err}
	_, err = io.Copy(outFile, in)
	if cerr := outFile.Close(); err == nil {err = cerr}
	return err
}

func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {return err}
		target := filepath.Join(dst, strings.TrimPrefix(path, src))
		if d.IsDir() {return os.MkdirAll(target, 0755)}
		return copyFile(path, target)
	})
}
