// Package gojson tokenizes JSON schema documents with goccy/go-json.
package gojson

import (
	"bytes"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/dashschema/internal/engine"
)

// go-json does not expose input offsets; tokens carry -1.
const noOffset = -1

type source struct {
	dec *j.Decoder
	fr  eng.Framer
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON using go-json.
func NewReader(r io.Reader) eng.TokenSource {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		return s.fr.Delim(byte(v), noOffset), nil
	case string:
		return s.fr.String(v, noOffset), nil
	case bool:
		return s.fr.Value(eng.Token{Kind: eng.KindBool, Bool: v, Offset: noOffset}), nil
	case j.Number:
		return s.fr.Value(eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: noOffset}), nil
	case float64:
		num := strconv.FormatFloat(v, 'g', -1, 64)
		return s.fr.Value(eng.Token{Kind: eng.KindNumber, Number: num, Offset: noOffset}), nil
	}
	return s.fr.Value(eng.Token{Kind: eng.KindNull, Offset: noOffset}), nil
}

func (s *source) Location() int64 { return noOffset }
