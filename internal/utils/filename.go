package utils

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeFilename reduces a client-supplied name to a bare file name with no
// directory components or control characters. It may return "".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.Clean("/" + name))

	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)

	if name == "/" || name == "." || name == ".." {
		return ""
	}

	// Limit to 200 bytes, keeping the extension.
	if len(name) > 200 {
		ext := filepath.Ext(name)
		if len(ext) > 20 {
			ext = ""
		}
		cut := 200 - len(ext)
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut] + ext
	}
	return name
}

// StorageName prefixes a sanitized original name with a unique token.
func StorageName(token, original string) string {
	clean := SanitizeFilename(original)
	if clean == "" {
		return token
	}
	return token + "_" + clean
}
