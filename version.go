package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-snapshot/migration"
)

// ErrInvalidVersion reports a version key that holds neither a string nor a
// number.
var ErrInvalidVersion = errors.New("schema version must be a string or a number")

// DeclaredVersion returns the schema version a payload claims, read from
// schema.version and then from a top-level version key. Numeric versions are
// rendered as written, so 0.9 becomes "0.9". Values of any other type count
// as undeclared here; Hydrate rejects them.
func DeclaredVersion(data map[string]any) (string, bool) {
	version, ok, _ := declaredVersion(data)
	return version, ok
}

func declaredVersion(data map[string]any) (string, bool, error) {
	for _, path := range []string{migration.VersionPath, "version"} {
		value, ok := migration.Get(data, path)
		if !ok || value == nil {
			continue
		}
		var version string
		switch v := value.(type) {
		case string:
			version = v
		case json.Number:
			version = v.String()
		case float64:
			version = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			version = strconv.Itoa(v)
		case int64:
			version = strconv.FormatInt(v, 10)
		default:
			return "", false, fmt.Errorf("%w: %s is %s", ErrInvalidVersion, path, describe(value))
		}
		if version = strings.TrimSpace(version); version != "" {
			return version, true, nil
		}
	}
	return "", false, nil
}
