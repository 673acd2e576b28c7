package schema

import (
	"path"
	"strings"
)

// FileRecord tracks one generated file keyed by path.
type FileRecord struct {
	Path         string `json:"path"`
	Content      string `json:"content"`
	IsGenerating bool   `json:"is_generating"`
	NeedsFixing  bool   `json:"needs_fixing"`
	HasErrors    bool   `json:"has_errors"`
	Language     string `json:"language,omitempty"`
}

var languageByExt = map[string]string{
	".ts":   "typescript",
	".tsx":  "typescript",
	".js":   "javascript",
	".jsx":  "javascript",
	".json": "json",
	".css":  "css",
	".html": "html",
	".md":   "markdown",
	".go":   "go",
	".py":   "python",
	".sql":  "sql",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
	".sh":   "shell",
}

// DetectLanguage maps a file path to a display language by extension.
func DetectLanguage(filePath string) string {
	ext := strings.ToLower(path.Ext(filePath))
	if lang, ok := languageByExt[ext]; ok {
		return lang
	}
	return "plaintext"
}
