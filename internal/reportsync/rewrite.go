package reportsync

import "regexp"

// parentHref matches href="../X" where X is one or more non-quote characters.
var parentHref = regexp.MustCompile(`href="\.\./([^"]+)"`)

// RewriteLinks strips exactly one leading "../" from every href="../X"
// attribute in content and returns the new text with the number of
// attributes rewritten. Everything else is left byte-identical.
func RewriteLinks(content string) (string, int) {
	n := len(parentHref.FindAllStringIndex(content, -1))
	if n == 0 {
		return content, 0
	}
	return parentHref.ReplaceAllString(content, `href="$1"`), n
}
