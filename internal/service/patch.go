package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/phrazzld/tasker-api/internal/domain"
)

// Patch is a partial update decoded from a JSON object. Keys are field names
// and values are left undecoded until the key has been allowed.
type Patch map[string]json.RawMessage

// Updatable fields.
var (
	userPatchFields = []string{"name", "email", "password", "age"}
	taskPatchFields = []string{"description", "completed"}
)

// checkAllowed fails with ErrInvalidOperation when p names any field outside allowed.
func (p Patch) checkAllowed(allowed []string) error {
	var rejected []string
	for key := range p {
		ok := false
		for _, a := range allowed {
			if key == a {
				ok = true
				break
			}
		}
		if !ok {
			rejected = append(rejected, key)
		}
	}
	if len(rejected) > 0 {
		sort.Strings(rejected)
		return fmt.Errorf("%w: %s", ErrInvalidOperation, strings.Join(rejected, ", "))
	}
	return nil
}

// decode unmarshals the value for key into dst. It reports whether the key
// was present. A null or mistyped value is a validation error.
func (p Patch) decode(key string, dst any) (bool, error) {
	raw, ok := p[key]
	if !ok {
		return false, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return true, fmt.Errorf("%w: %s must not be null", domain.ErrValidation, key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("%w: %s has the wrong type", domain.ErrValidation, key)
	}
	return true, nil
}
