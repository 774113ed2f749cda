package keywords

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bluekornchips/gandalf/internal/cache"
)

const (
	// DefaultMaxKeywords bounds the derived vocabulary
	DefaultMaxKeywords = 15

	// manifestReadCap limits how much of each manifest is read
	manifestReadCap = 2000

	// maxFilesChecked bounds the extension sampling walk
	maxFilesChecked = 50

	// extensionDiversityMin is the distinct-extension count below
	// which sampling descends one directory level deeper
	extensionDiversityMin = 3
)

// manifestFiles are the project files mined for keywords, in scan order
var manifestFiles = []string{
	"package.json", "pyproject.toml", "go.mod", "Cargo.toml",
	"requirements.txt", "README.md", "Gemfile", "pom.xml",
}

// extensionKeywords maps file extensions to technology tokens
var extensionKeywords = map[string][]string{
	".go":    {"go", "golang"},
	".py":    {"python"},
	".js":    {"javascript"},
	".ts":    {"typescript"},
	".tsx":   {"typescript", "react"},
	".jsx":   {"javascript", "react"},
	".rs":    {"rust"},
	".java":  {"java"},
	".kt":    {"kotlin"},
	".rb":    {"ruby"},
	".c":     {"c"},
	".cpp":   {"cpp"},
	".swift": {"swift"},
	".php":   {"php"},
	".sql":   {"sql"},
	".sh":    {"shell"},
	".tf":    {"terraform"},
}

// markerKeywords maps special build files to technology tokens
var markerKeywords = map[string][]string{
	"Dockerfile":         {"docker"},
	"docker-compose.yml": {"docker"},
	"Makefile":           {"make"},
	"CMakeLists.txt":     {"cmake"},
	"go.mod":             {"go"},
	"Cargo.toml":         {"rust"},
	"build.gradle":       {"gradle", "java"},
	"pom.xml":            {"maven", "java"},
}

// techVocabulary is the static set scanned for in README content
var techVocabulary = []string{
	"react", "vue", "angular", "svelte", "nextjs", "express", "django",
	"flask", "fastapi", "rails", "spring", "kubernetes", "docker",
	"postgres", "postgresql", "mysql", "sqlite", "redis", "mongodb",
	"graphql", "grpc", "rest", "api", "cli", "sdk", "typescript",
	"python", "golang", "rust", "java", "terraform", "aws", "gcp",
}

// knownFrameworkDeps are package.json dependencies worth surfacing
var knownFrameworkDeps = map[string]string{
	"react": "react", "vue": "vue", "@angular/core": "angular",
	"svelte": "svelte", "next": "nextjs", "express": "express",
	"fastify": "fastify", "electron": "electron", "typescript": "typescript",
}

var requirementSplit = regexp.MustCompile(`[=<>!~\[;]`)

// Generator derives a bounded context-keyword vocabulary from a
// project directory. Results are cached per (root, manifest mtimes).
type Generator struct {
	maxKeywords int
	cache       *cache.Cache
	log         zerolog.Logger
}

// NewGenerator creates a keyword generator. A nil cache disables caching.
func NewGenerator(maxKeywords int, c *cache.Cache, log zerolog.Logger) *Generator {
	if maxKeywords <= 0 {
		maxKeywords = DefaultMaxKeywords
	}
	return &Generator{maxKeywords: maxKeywords, cache: c, log: log}
}

// Generate returns context keywords for the project at root. On any
// extraction failure it degrades to just the project-name seed.
func (g *Generator) Generate(root string) []string {
	seed := strings.ToLower(filepath.Base(filepath.Clean(root)))

	key := g.cacheKey(root)
	if g.cache != nil {
		if data := g.cache.Get(key); data != nil {
			var cached []string
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached
			}
		}
	}

	found := []string{seed}
	found = append(found, g.fromManifests(root)...)
	found = append(found, g.fromFileSampling(root)...)

	result := dedupe(found, g.maxKeywords)
	if len(result) == 0 {
		result = []string{seed}
	}

	if g.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			g.cache.Put(key, data)
		}
	}
	return result
}

// Invalidate drops the cached vocabulary for root
func (g *Generator) Invalidate(root string) {
	if g.cache != nil {
		g.cache.Delete(g.cacheKey(root))
	}
}

// cacheKey folds the latest manifest mtime into the key so edits to
// watched manifests naturally miss the stale entry.
func (g *Generator) cacheKey(root string) string {
	var latest int64
	for _, name := range manifestFiles {
		if info, err := os.Stat(filepath.Join(root, name)); err == nil {
			if mt := info.ModTime().UnixNano(); mt > latest {
				latest = mt
			}
		}
	}
	return fmt.Sprintf("keywords:%s:%d", root, latest)
}

func (g *Generator) fromManifests(root string) []string {
	var out []string
	for _, name := range manifestFiles {
		head, err := readHead(filepath.Join(root, name), manifestReadCap)
		if err != nil {
			continue
		}
		switch name {
		case "package.json":
			out = append(out, fromPackageJSON(head)...)
		case "requirements.txt":
			out = append(out, fromRequirements(head)...)
		case "README.md":
			out = append(out, fromVocabularyScan(head)...)
		default:
			out = append(out, fromVocabularyScan(head)...)
		}
	}
	return out
}

func fromPackageJSON(head []byte) []string {
	// The head read may cut the JSON off mid-document; a parse failure
	// falls back to a vocabulary scan of whatever text we have.
	var pkg struct {
		Name         string            `json:"name"`
		Keywords     []string          `json:"keywords"`
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal(head, &pkg); err != nil {
		return fromVocabularyScan(head)
	}

	var out []string
	if pkg.Name != "" {
		out = append(out, strings.ToLower(pkg.Name))
	}
	for _, kw := range pkg.Keywords {
		out = append(out, strings.ToLower(kw))
	}
	for dep := range pkg.Dependencies {
		if token, ok := knownFrameworkDeps[dep]; ok {
			out = append(out, token)
		}
	}
	return out
}

func fromRequirements(head []byte) []string {
	var out []string
	for _, line := range strings.Split(string(head), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		name := strings.TrimSpace(requirementSplit.Split(line, 2)[0])
		if name != "" {
			out = append(out, strings.ToLower(name))
		}
	}
	return out
}

func fromVocabularyScan(head []byte) []string {
	text := strings.ToLower(string(head))
	var out []string
	for _, term := range techVocabulary {
		if strings.Contains(text, term) {
			out = append(out, term)
		}
	}
	return out
}

// fromFileSampling scans top-level files for extensions and marker
// files, descending one level only when extension diversity is low.
// The walk is bounded by maxFilesChecked; this trades completeness
// for predictable latency on large trees.
func (g *Generator) fromFileSampling(root string) []string {
	checked := 0
	exts := map[string]bool{}
	var out []string

	scan := func(dir string) []os.DirEntry {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil
		}
		return entries
	}

	topEntries := scan(root)
	var subdirs []string
	for _, e := range topEntries {
		if checked >= maxFilesChecked {
			break
		}
		if e.IsDir() {
			if !strings.HasPrefix(e.Name(), ".") {
				subdirs = append(subdirs, filepath.Join(root, e.Name()))
			}
			continue
		}
		checked++
		out = append(out, sampleFile(e.Name(), exts)...)
	}

	if len(exts) < extensionDiversityMin {
		for _, dir := range subdirs {
			if checked >= maxFilesChecked {
				break
			}
			for _, e := range scan(dir) {
				if checked >= maxFilesChecked {
					break
				}
				if e.IsDir() {
					continue
				}
				checked++
				out = append(out, sampleFile(e.Name(), exts)...)
			}
		}
	}

	return out
}

func sampleFile(name string, exts map[string]bool) []string {
	var out []string
	if tokens, ok := markerKeywords[name]; ok {
		out = append(out, tokens...)
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext != "" && !exts[ext] {
		exts[ext] = true
		out = append(out, extensionKeywords[ext]...)
	}
	return out
}

// dedupe keeps first occurrence order, drops single-character tokens,
// and truncates to the cap.
func dedupe(tokens []string, limit int) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if len(t) < 2 || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func readHead(path string, limit int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, limit)
	n, err := f.Read(buf)
	if n == 0 && err != nil {
		return nil, err
	}
	return buf[:n], nil
}
