// Package surface translates between the two external API vocabularies and
// the canonical field names used inside the gateway.
//
// Each surface owns one Table per resource. A table maps every canonical
// field of the resource to exactly one external name, or lists it as not
// surfaced. Inbound aliases and explicitly dropped external fields are
// declared on the table too, so nothing is lost without a record.
package surface

import (
	"fmt"
	"strings"
)

// Surface names one external vocabulary.
type Surface string

const (
	Mobile Surface = "mobile"
	Legacy Surface = "legacy"
)

// Surfaces lists every surface the gateway serves.
var Surfaces = []Surface{Mobile, Legacy}

// Parse accepts "mobile" or "legacy" ("gibran" and "web" are aliases for the
// latter).
func Parse(s string) (Surface, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mobile", "v1":
		return Mobile, nil
	case "legacy", "gibran", "web":
		return Legacy, nil
	}
	return "", fmt.Errorf("unknown surface %q", s)
}

func (s Surface) String() string { return string(s) }
