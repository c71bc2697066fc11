package invoice

import (
	"fmt"
	"net/url"
	"strings"
)

// AttachmentOrigin is the single scheme and host that invoice attachments
// may be stored on. The zero value allows no attachment URLs at all.
type AttachmentOrigin struct {
	scheme string
	host   string
}

// ParseAttachmentOrigin reads the scheme and host of base. An empty base
// yields the zero origin.
func ParseAttachmentOrigin(base string) (AttachmentOrigin, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return AttachmentOrigin{}, nil
	}

	u, err := url.Parse(base)
	if err != nil {
		return AttachmentOrigin{}, fmt.Errorf("parse attachment base url: %w", err)
	}

	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return AttachmentOrigin{}, fmt.Errorf("attachment base url %q must be an absolute http(s) url", base)
	}

	return AttachmentOrigin{scheme: scheme, host: strings.ToLower(u.Host)}, nil
}

func (o AttachmentOrigin) IsZero() bool { return o.host == "" }

func (o AttachmentOrigin) String() string {
	if o.IsZero() {
		return ""
	}

	return o.scheme + "://" + o.host
}

// Allows reports whether raw points at the origin's scheme and host.
func (o AttachmentOrigin) Allows(raw string) bool {
	if o.IsZero() {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil || u.User != nil {
		return false
	}

	return strings.EqualFold(u.Scheme, o.scheme) && strings.EqualFold(u.Host, o.host)
}

// Check returns ErrInvalidInput for a non-empty raw outside the origin.
func (o AttachmentOrigin) Check(raw string) error {
	if raw == "" || o.Allows(raw) {
		return nil
	}

	if o.IsZero() {
		return fmt.Errorf("%w: attachment urls are not enabled", ErrInvalidInput)
	}

	return fmt.Errorf("%w: file url must be on %s", ErrInvalidInput, o)
}
