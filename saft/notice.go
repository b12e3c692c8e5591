package saft

import (
	"fmt"
	"html"
	"strings"
)

// Notice is the completion message of an export: a label and an identifier,
// typically the address the file will be mailed to.
type Notice struct {
	Label      string `json:"label"`
	Identifier string `json:"identifier,omitempty"`
}

// ParseNotice splits "<label>:<identifier>" on the first colon. A message
// without a colon is all label.
func ParseNotice(message string) Notice {
	label, identifier, found := strings.Cut(message, ":")
	if !found {
		return Notice{Label: strings.TrimSpace(message)}
	}
	return Notice{
		Label:      strings.TrimSpace(label),
		Identifier: strings.TrimSpace(identifier),
	}
}

// Mailto returns the mail link for the identifier, or "" if there is none.
func (n Notice) Mailto() string {
	if n.Identifier == "" {
		return ""
	}
	return "mailto:" + n.Identifier
}

// String renders the notice as plain text.
func (n Notice) String() string {
	if n.Identifier == "" {
		return n.Label
	}
	return n.Label + ": " + n.Identifier
}

// HTML renders the label followed by a mail link, escaping both parts.
func (n Notice) HTML() string {
	if n.Identifier == "" {
		return html.EscapeString(n.Label)
	}
	id := html.EscapeString(n.Identifier)
	return fmt.Sprintf(`%s: <a class="text-primary font-bold" href="mailto:%s">%s</a>`,
		html.EscapeString(n.Label), id, id)
}
