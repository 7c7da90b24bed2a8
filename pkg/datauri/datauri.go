// Package datauri parses base64 data URIs of the form data:<mime>;base64,<payload>.
package datauri

import (
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
)

var (
	ErrMalformed    = errors.New("malformed data URI")
	ErrEmptyPayload = errors.New("data URI has no payload")
)

var pattern = regexp.MustCompile(`^data:([a-zA-Z0-9.+-]+/[a-zA-Z0-9.+-]+)(?:;[^,;]+=[^,;]+)*;base64,(.*)$`)

type DataURI struct {
	MIMEType string
	Data     []byte
}

// Parse decodes uri. The MIME type is lower-cased and stripped of parameters.
func Parse(uri string) (*DataURI, error) {
	m := pattern.FindStringSubmatch(strings.TrimSpace(uri))
	if m == nil {
		return nil, ErrMalformed
	}
	if m[2] == "" {
		return nil, ErrEmptyPayload
	}

	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	return &DataURI{MIMEType: strings.ToLower(m[1]), Data: data}, nil
}

// HasType reports whether the MIME type's top-level type is kind, e.g. "audio".
func (d *DataURI) HasType(kind string) bool {
	return strings.HasPrefix(d.MIMEType, kind+"/")
}
