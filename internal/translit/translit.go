// Package translit folds place and station names to plain ASCII text so they
// can be typed at a prompt without accented characters or a non-Latin keyboard.
package translit

import (
	"strings"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

// Fold transliterates s to ASCII and trims surrounding space. Accented
// letters lose their marks and other scripts are romanized, so "Αθήνα"
// becomes "Athena" and "東京" becomes "Dong Jing".
func Fold(s string) string {
	if isASCII(s) {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(unidecode.Unidecode(norm.NFC.String(s)))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
