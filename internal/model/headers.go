package model

import "strings"

// Header is a two-line section comment injected at a category boundary.
type Header struct {
	Title string
	Rule  string
}

// Lines returns the header as comment lines prefixed with indent.
func (h Header) Lines(indent string) []string {
	return []string{indent + h.Title, indent + h.Rule}
}

var (
	HelpersHeader         = Header{"# --- Helpers --- #", "# --------------- #"}
	MainHeader            = Header{"# --- Main --- #", "# ------------ #"}
	PropertiesHeader      = Header{"# Properties #", "# ---------- #"}
	InstanceMethodsHeader = Header{"# Instance Methods #", "# ---------------- #"}
)

// headerLines holds every header line pyorder has ever written, including
// the older "# Helpers #" and "# API Functions #" forms.
var headerLines = map[string]struct{}{
	HelpersHeader.Title:         {},
	HelpersHeader.Rule:          {},
	MainHeader.Title:            {},
	MainHeader.Rule:             {},
	PropertiesHeader.Title:      {},
	PropertiesHeader.Rule:       {},
	InstanceMethodsHeader.Title: {},
	InstanceMethodsHeader.Rule:  {},
	"# Helpers #":               {},
	"# ------- #":               {},
	"# API Functions #":         {},
	"# ------------- #":         {},
}

// IsHeaderLine reports whether line, ignoring surrounding whitespace, is a
// section header line.
func IsHeaderLine(line string) bool {
	_, ok := headerLines[strings.TrimSpace(line)]
	return ok
}
