package security

import (
	"strconv"
	"strings"
)

// Authorizer decides who may talk to the bot and who may run admin commands.
// User ids are compared as numbers, so "+42" and "042" both name user 42.
type Authorizer struct {
	allowedIDs map[int64]bool
	adminID    int64
	hasAdmin   bool
}

// NewAuthorizer creates an authorizer. An empty allowlist admits everyone;
// the admin is always admitted. An empty or non-numeric adminID means no
// one is admin.
func NewAuthorizer(allowedIDs []int64, adminID string) *Authorizer {
	a := &Authorizer{allowedIDs: make(map[int64]bool, len(allowedIDs))}
	for _, id := range allowedIDs {
		a.allowedIDs[id] = true
	}
	a.adminID, a.hasAdmin = parseUserID(adminID)
	return a
}

// IsAllowed returns true if the user may interact with the bot.
func (a *Authorizer) IsAllowed(userID string) bool {
	if len(a.allowedIDs) == 0 || a.IsAdmin(userID) {
		return true
	}
	id, ok := parseUserID(userID)
	return ok && a.allowedIDs[id]
}

// IsAdmin reports whether userID is the configured administrator.
func (a *Authorizer) IsAdmin(userID string) bool {
	id, ok := parseUserID(userID)
	return ok && a.hasAdmin && id == a.adminID
}

func parseUserID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return id, err == nil
}
