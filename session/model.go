package session

import (
	"encoding/json"
	"errors"
	"sort"
)

// Reserved storage keys.
const (
	KeyToken           = "token"
	KeyPermissions     = "permissions"
	KeyLoadingUserInfo = "loadingUserInfo"
)

// loadingValue is the marker value written while a resolution is in flight.
const loadingValue = "true"

// ErrCorruptPermissionCache is returned when the cached permission value is not a JSON
// array of strings.
var ErrCorruptPermissionCache = errors.New("corrupt permission cache")

// Snapshot is the durable part of a session.
type Snapshot struct {
	Token       string
	Permissions []string
	HasCache    bool
	Loading     bool
}

func encodePermissions(codes []string) (string, error) {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	sort.Strings(out)

	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodePermissions(raw string) ([]string, error) {
	var codes []string
	if err := json.Unmarshal([]byte(raw), &codes); err != nil {
		return nil, ErrCorruptPermissionCache
	}
	if codes == nil {
		// "null" is not an array.
		return nil, ErrCorruptPermissionCache
	}
	return codes, nil
}
