package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/rupestre-campos/pi-world-radio/internal/catalog"
	"github.com/rupestre-campos/pi-world-radio/internal/fetch"
	"github.com/rupestre-campos/pi-world-radio/internal/player"
	"github.com/rupestre-campos/pi-world-radio/internal/selection"
)

// FriendlyError turns an error into a short message for the terminal.
func FriendlyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, catalog.ErrNetworkUnavailable):
		return "The radio directory is unreachable and no cached copy exists.\nPlease check your internet connection."
	case errors.Is(err, selection.ErrEmptyCandidateSet):
		return "Nothing to choose from here. Starting over."
	case errors.Is(err, selection.ErrStationUnavailable):
		return "That station is no longer listed. Starting over."
	case errors.Is(err, player.ErrPlayerNotFound):
		return "Player not found.\nInstall mpv or set player: native in the config."
	case errors.Is(err, context.DeadlineExceeded):
		return "Connection timed out.\nPlease check your internet connection."
	case errors.Is(err, fetch.ErrTransient):
		return "The radio directory is not responding right now.\nPlease try again later."
	}
	return friendlyErrorMessage(err.Error())
}

func friendlyErrorMessage(errStr string) string {
	if strings.Contains(errStr, "no such host") {
		return "Unable to connect to server.\nPlease check your internet connection."
	}
	if strings.Contains(errStr, "connection refused") {
		return "Connection refused by server.\nThe service may be temporarily unavailable."
	}
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return "Connection timed out.\nPlease check your internet connection."
	}
	if strings.Contains(errStr, "network is unreachable") || strings.Contains(errStr, "network read error") {
		return "Network is unreachable.\nPlease check your internet connection."
	}
	if strings.Contains(errStr, "status 401") {
		return "Stream access denied (401)."
	}
	if strings.Contains(errStr, "status 403") {
		return "Stream access forbidden (403)."
	}
	if strings.Contains(errStr, "status 404") {
		return "Not found (404)."
	}

	if idx := strings.Index(errStr, ": dial"); idx > 0 {
		return errStr[:idx]
	}
	if len(errStr) > 100 {
		return errStr[:100] + "..."
	}
	return errStr
}
