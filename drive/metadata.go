package drive

import (
	"errors"

	jsoniter "github.com/json-iterator/go"
)

// AttributesKey is the metadata key under which JSON attributes are stored.
const AttributesKey = "attributes"

// SetAttributes encodes v as JSON into the attributes metadata entry of opts.
func (opts *WriteOptions) SetAttributes(v any) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(v)
	if err != nil {
		return errors.Join(ErrInvalidAttributes, err)
	}

	if opts.Metadata == nil {
		opts.Metadata = make(map[string][]byte)
	}

	opts.Metadata[AttributesKey] = data

	return nil
}

// Attributes decodes the JSON attributes metadata entry into v.
// It reports false when the entry has no attributes.
func (s *Stat) Attributes(v any) (bool, error) {
	data, ok := s.Metadata[AttributesKey]
	if !ok {
		return false, nil
	}

	if !jsoniter.ConfigFastest.Valid(data) {
		return true, ErrInvalidAttributes
	}

	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, v); err != nil {
		return true, errors.Join(ErrInvalidAttributes, err)
	}

	return true, nil
}
