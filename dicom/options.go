package dicom

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/cocosip/go-diconde/codec"
)

var _ codec.Options = (*Options)(nil)

// Options controls how Encode identifies the written instance.
type Options struct {
	// SOPInstanceUID overrides the generated instance UID. Empty means a new
	// 2.25 UUID-derived UID is generated for every file.
	SOPInstanceUID string
}

// Validate checks that a SOP instance UID override is a well-formed UID
func (o *Options) Validate() error {
	if o.SOPInstanceUID == "" {
		return nil
	}
	if !validUID(o.SOPInstanceUID) {
		return fmt.Errorf("%w: malformed SOP instance UID %q", codec.ErrInvalidParameter, o.SOPInstanceUID)
	}
	return nil
}

func (o *Options) instanceUID() string {
	if o != nil && o.SOPInstanceUID != "" {
		return o.SOPInstanceUID
	}
	return NewUID()
}

// NewUID returns a UID under the 2.25 root built from a random UUID.
func NewUID() string {
	u := uuid.New()
	return "2.25." + new(big.Int).SetBytes(u[:]).String()
}

// validUID accepts dot-separated numeric components, at most 64 characters,
// with no leading zeros.
func validUID(uid string) bool {
	if len(uid) == 0 || len(uid) > 64 {
		return false
	}
	start := 0
	for i := 0; i <= len(uid); i++ {
		if i < len(uid) && uid[i] != '.' {
			if uid[i] < '0' || uid[i] > '9' {
				return false
			}
			continue
		}
		part := uid[start:i]
		if part == "" || (len(part) > 1 && part[0] == '0') {
			return false
		}
		start = i + 1
	}
	return true
}
