// Package json tokenizes JSON schema documents with encoding/json. It is the
// fallback driver and records real byte offsets.
package json

import (
	"bytes"
	"encoding/json"
	"io"

	eng "github.com/reoring/dashschema/internal/engine"
)

type jsonSource struct {
	dec *json.Decoder
	fr  eng.Framer
	off int64
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON.
func NewReader(r io.Reader) eng.TokenSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonSource{dec: dec, off: -1}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *jsonSource) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	s.off = s.dec.InputOffset()
	switch v := tok.(type) {
	case json.Delim:
		return s.fr.Delim(byte(v), s.off), nil
	case string:
		return s.fr.String(v, s.off), nil
	case bool:
		return s.fr.Value(eng.Token{Kind: eng.KindBool, Bool: v, Offset: s.off}), nil
	case json.Number:
		return s.fr.Value(eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: s.off}), nil
	}
	return s.fr.Value(eng.Token{Kind: eng.KindNull, Offset: s.off}), nil
}

func (s *jsonSource) Location() int64 { return s.off }
