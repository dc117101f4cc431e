package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Platform identifies where an uploader or binding originates.
type Platform string

const (
	PlatformQQ  Platform = "QQ"
	PlatformWeb Platform = "WEB"
)

var platforms = map[Platform]struct{}{
	PlatformQQ:  {},
	PlatformWeb: {},
}

// ParsePlatform accepts the canonical upper-case names, case-insensitively.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := platforms[p]; !ok {
		return "", fmt.Errorf("platform %q: %w", s, ErrValidation)
	}
	return p, nil
}

func (p Platform) Valid() bool {
	_, ok := platforms[p]
	return ok
}

func (p *Platform) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("platform: %w", ErrValidation)
	}
	parsed, err := ParsePlatform(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
