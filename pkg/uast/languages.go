package uast

import (
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/alexaandru/go-sitter-forest/php"
	"github.com/src-d/enry/v2"
)

// LanguagePHP is the language name reported for supported files.
const LanguagePHP = "php"

// enryPHP is the language name enry reports for PHP sources.
const enryPHP = "PHP"

// phpExtensions lists the file extensions parsed as PHP.
var phpExtensions = []string{".php", ".phtml", ".php5", ".php7", ".php8", ".inc"}

var (
	languageOnce sync.Once
	phpLanguage  *sitter.Language
)

// GetLanguage returns the tree-sitter PHP language. Initialization is deferred
// until the first call.
func GetLanguage() *sitter.Language {
	languageOnce.Do(func() {
		phpLanguage = sitter.NewLanguage(php.GetLanguage())
	})

	return phpLanguage
}

// Extensions returns the supported file extensions.
func Extensions() []string {
	out := make([]string, len(phpExtensions))
	copy(out, phpExtensions)

	return out
}

// DetectLanguage returns the linguist language name for the file, using the
// extension first and the content as a fallback.
func DetectLanguage(filename string, content []byte) string {
	return enry.GetLanguage(filename, content)
}

// IsPHP reports whether the file is PHP source, either by a known extension
// or, for extensionless files, by content detection.
func IsPHP(filename string, content []byte) bool {
	if hasPHPExtension(filename) {
		return true
	}

	if getFileExtension(filename) != "" {
		return false
	}

	return DetectLanguage(filename, content) == enryPHP
}
