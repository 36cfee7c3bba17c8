package config

import (
	"strings"
	"unicode"
)

// envKeyPath maps an upper-snake env var onto the dotted koanf path of the
// YAML key it overrides. Each underscore-separated segment is matched against
// the keys at that level ignoring case and punctuation, so POSTGRES_SSLMODE
// lands on postgres.sslMode. Segments with no YAML counterpart are lowercased.
func envKeyPath(envKey string, tree map[string]any) string {
	var path []string
	level := tree

	for _, segment := range strings.Split(strings.ToLower(envKey), "_") {
		if segment == "" {
			continue
		}

		key, child := lookupKey(level, segment)
		path = append(path, key)
		level = child
	}

	return strings.Join(path, ".")
}

// lookupKey returns the YAML spelling of segment at this level and the nested
// map below it. Unknown segments come back unchanged with a nil child.
func lookupKey(level map[string]any, segment string) (string, map[string]any) {
	want := foldKey(segment)
	for key, value := range level {
		if foldKey(key) == want {
			child, _ := value.(map[string]any)

			return key, child
		}
	}

	return segment, nil
}

func foldKey(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}

		return -1
	}, s)
}
