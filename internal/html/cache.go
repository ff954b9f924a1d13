package html

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"
	"text/template"
)

const maxHTMLFileSize = 8192

// DialogData is a flexible key→value map for template substitution.
// Keys match L2J variable names exactly (e.g. "objectId", "npcname", "playername").
// Handler fills in the keys relevant to the current context.
type DialogData map[string]any

// Cache loads .htm files from a file system and stores compiled text/template objects.
// Files use Go {{index . "var"}} syntax for variables.
type Cache struct {
	fsys      fs.FS
	templates map[string]*template.Template
	mu        sync.RWMutex
	lazy      bool
}

// NewDirCache creates a cache over a directory on disk.
// A missing directory yields an empty cache, so dialogs fall back to generated pages.
func NewDirCache(htmlDir string, lazy bool) (*Cache, error) {
	info, err := os.Stat(htmlDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("HTML directory does not exist, dialogs use fallback pages", "dir", htmlDir)
			return NewCache(os.DirFS(htmlDir), true)
		}
		return nil, fmt.Errorf("stat html dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("html dir is not a directory: %s", htmlDir)
	}
	return NewCache(os.DirFS(htmlDir), lazy)
}

// NewCache creates a new HTML template cache over fsys.
// If lazy is false, all .htm files are loaded at creation time.
// If lazy is true, files are loaded on first access (cache miss).
func NewCache(fsys fs.FS, lazy bool) (*Cache, error) {
	c := &Cache{
		fsys:      fsys,
		templates: make(map[string]*template.Template),
		lazy:      lazy,
	}

	if !lazy {
		if err := c.preload(); err != nil {
			return nil, fmt.Errorf("preloading HTML templates: %w", err)
		}
	}

	return c, nil
}

// Get returns a compiled template by relative path (e.g. "quests/Q00001_LettersOfLove/30048-02.htm").
func (c *Cache) Get(name string) (*template.Template, error) {
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("invalid template path: %s", name)
	}

	c.mu.RLock()
	tmpl, ok := c.templates[name]
	c.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	if !c.lazy {
		return nil, fmt.Errorf("template not found: %s", name)
	}

	return c.loadAndCache(name)
}

// Execute renders a template with the given data and returns the HTML string.
func (c *Cache) Execute(name string, data DialogData) (string, error) {
	tmpl, err := c.Get(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(data)); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}

	return buf.String(), nil
}

// Exists returns true if the template is cached or the file exists.
func (c *Cache) Exists(name string) bool {
	if !fs.ValidPath(name) {
		return false
	}

	c.mu.RLock()
	_, ok := c.templates[name]
	c.mu.RUnlock()
	if ok {
		return true
	}

	if c.lazy {
		_, err := fs.Stat(c.fsys, name)
		return err == nil
	}

	return false
}

// Len returns the number of compiled templates.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

// preload walks the file system and loads all .htm files into cache.
func (c *Cache) preload() error {
	count := 0
	err := fs.WalkDir(c.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".htm") {
			return nil
		}

		if _, err := c.loadFile(p); err != nil {
			slog.Warn("failed to load HTML template", "path", p, "error", err)
			return nil // skip broken files, don't fail entire preload
		}

		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking html dir: %w", err)
	}

	slog.Info("HTML templates preloaded", "count", count)
	return nil
}

// loadAndCache loads a file, compiles it, and stores in cache.
func (c *Cache) loadAndCache(name string) (*template.Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock.
	if tmpl, ok := c.templates[name]; ok {
		return tmpl, nil
	}

	return c.loadFile(name)
}

// loadFile reads and compiles the template, stores it in cache.
// Caller must hold c.mu write lock (or be called during init).
func (c *Cache) loadFile(name string) (*template.Template, error) {
	info, err := fs.Stat(c.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.Size() > maxHTMLFileSize {
		return nil, fmt.Errorf("file too large (%d bytes, max %d): %s", info.Size(), maxHTMLFileSize, name)
	}

	raw, err := fs.ReadFile(c.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	// option "missingkey=zero" makes missing variables render as "" instead of error.
	tmpl, err := template.New(path.Base(name)).Option("missingkey=zero").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}

	c.templates[name] = tmpl
	return tmpl, nil
}
