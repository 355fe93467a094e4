package command

import "strings"

// Quote returns s quoted for a POSIX shell. Strings without special
// characters are returned unchanged. Single quotes inside s are escaped by
// closing the quote, adding an escaped quote and reopening: ' -> '\''
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n\r'\"\\$`!*?[]{}()<>|&;#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Line joins args into one command line, quoting each argument.
func Line(args ...string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = Quote(a)
	}
	return strings.Join(quoted, " ")
}
