// Package redact keeps secrets out of log lines.
package redact

import "strings"

func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "***"
	}

	local, domain := parts[0], parts[1]
	if len(local) > 2 {
		local = local[:2] + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Token keeps the last four characters so two tokens can be told apart.
func Token(s string) string {
	if len(s) <= 8 {
		return "[REDACTED_TOKEN]"
	}
	return "[REDACTED_TOKEN]…" + s[len(s)-4:]
}

func Password() string { return "[REDACTED_PASSWORD]" }
