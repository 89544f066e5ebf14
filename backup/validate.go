package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValidationResult is the outcome of the structural gate. Errors are joined
// into one human-readable message by the import handler.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func (r ValidationResult) Message() string {
	return strings.Join(r.Errors, "; ")
}

var dataCollections = []string{
	"products", "customers", "suppliers", "standalone_sales", "invoices", "quotes",
}

// ValidateStructure checks structural presence only, not exhaustive types:
// metadata with a version field, a data object, and each collection — if
// present — must be an array. Absent collections are tolerated (empty).
func ValidateStructure(raw []byte) ValidationResult {
	var res ValidationResult

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		res.Errors = append(res.Errors, "document is not a JSON object")
		return res
	}

	meta, ok := top["metadata"]
	if !ok {
		res.Errors = append(res.Errors, "missing metadata section")
	} else {
		var metaObj map[string]json.RawMessage
		if err := json.Unmarshal(meta, &metaObj); err != nil {
			res.Errors = append(res.Errors, "metadata is not an object")
		} else if _, ok := metaObj["version"]; !ok {
			res.Errors = append(res.Errors, "metadata.version is missing")
		}
	}

	data, ok := top["data"]
	if !ok {
		res.Errors = append(res.Errors, "missing data section")
	} else {
		var dataObj map[string]json.RawMessage
		if err := json.Unmarshal(data, &dataObj); err != nil {
			res.Errors = append(res.Errors, "data is not an object")
		} else {
			for _, name := range dataCollections {
				col, ok := dataObj[name]
				if !ok {
					continue
				}
				trimmed := bytes.TrimSpace(col)
				if len(trimmed) > 0 && trimmed[0] != '[' && !bytes.Equal(trimmed, []byte("null")) {
					res.Errors = append(res.Errors, fmt.Sprintf("data.%s must be an array", name))
				}
			}
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// CheckVersion gates a document version against the compatibility range:
// same major as CurrentVersion and not below MinSupportedVersion.
func CheckVersion(version string) error {
	major, minor, patch, err := parseVersion(version)
	if err != nil {
		return fmt.Errorf("version de sauvegarde invalide: %q", version)
	}
	curMajor, _, _, _ := parseVersion(CurrentVersion)
	minMajor, minMinor, minPatch, _ := parseVersion(MinSupportedVersion)

	if major != curMajor {
		return fmt.Errorf("version de sauvegarde incompatible: %s (version supportée: %s)", version, CurrentVersion)
	}
	if major == minMajor && (minor < minMinor || (minor == minMinor && patch < minPatch)) {
		return fmt.Errorf("version de sauvegarde trop ancienne: %s (minimum supporté: %s)", version, MinSupportedVersion)
	}
	return nil
}

func parseVersion(v string) (major, minor, patch int, err error) {
	parts := strings.SplitN(strings.TrimSpace(v), ".", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("not a semver string: %q", v)
	}
	nums := [3]int{}
	for i, p := range parts {
		n, convErr := strconv.Atoi(p)
		if convErr != nil || n < 0 {
			return 0, 0, 0, fmt.Errorf("not a semver string: %q", v)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}
