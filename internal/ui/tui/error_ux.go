package tui

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/stopnorway/stopnorway/internal/domain"
)

// userMessage turns an error into a one-line status for the footer.
func userMessage(err error) string {
	if err == nil {
		return ""
	}

	var oe *domain.OpError
	if errors.As(err, &oe) {
		base := ""
		if strings.TrimSpace(oe.Path) != "" {
			base = filepath.Base(oe.Path)
		}
		switch oe.Kind {
		case domain.KindNotFound:
			if strings.HasPrefix(oe.Op, "runstore") {
				return "Saved query not found"
			}
			if strings.Contains(oe.Op, "workspacefinder") {
				return "Workspace not found"
			}
			return "Not found"
		case domain.KindInvalidData:
			if base != "" {
				return "Unreadable file " + base
			}
			return "Unreadable data"
		case domain.KindInvalidConfig:
			return "Invalid input"
		}
	}
	return "Unexpected error (see logs)"
}
