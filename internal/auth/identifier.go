package auth

import "strings"

// LoginEmail turns a login identifier into the email used for lookup.
// Anything containing "@" is an email already. A bare legacy username maps
// to "<username>@<legacyDomain>"; this is the only derivation rule and it is
// applied identically for both surfaces.
func LoginEmail(identifier, legacyDomain string) string {
	id := strings.ToLower(strings.TrimSpace(identifier))
	if id == "" || strings.Contains(id, "@") {
		return id
	}
	domain := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(legacyDomain), "@"))
	if domain == "" {
		return id
	}
	return id + "@" + domain
}
