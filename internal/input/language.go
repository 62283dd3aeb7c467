package input

import (
	"path/filepath"
	"strings"

	"github.com/codeguardian/codeguardian/internal/types"
)

// extLanguages maps lower-case file extensions (without the dot) to the
// language hint sent to the scanning service.
var extLanguages = map[string]types.Language{
	"js":   "javascript",
	"jsx":  "javascript",
	"ts":   "typescript",
	"tsx":  "typescript",
	"py":   "python",
	"java": "java",
	"cpp":  "cpp",
	"c":    "c",
	"php":  "php",
	"rb":   "ruby",
	"go":   "go",
	"rs":   "rust",
}

// Languages is the set a user may pick manually.
var Languages = []types.Language{
	"javascript", "python", "java", "typescript", "cpp", "php", "go", "rust",
}

// acceptedExts are the extensions offered when picking files to upload.
var acceptedExts = map[string]bool{
	".js": true, ".jsx": true, ".ts": true, ".tsx": true, ".py": true,
	".java": true, ".cpp": true, ".c": true, ".php": true, ".rb": true,
	".go": true, ".rs": true, ".txt": true,
}

// DetectLanguage infers a language from a filename's extension. Unknown
// extensions return the unset language.
func DetectLanguage(filename string) types.Language {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	return extLanguages[ext]
}

// KnownLanguage reports whether lang is one of the manually selectable languages.
func KnownLanguage(lang types.Language) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Accepted reports whether filename has one of the upload extensions.
func Accepted(filename string) bool {
	return acceptedExts[strings.ToLower(filepath.Ext(filename))]
}
