package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// Member is a single key/value pair of an ordered object.
type Member struct {
	Key   string
	Value any
}

// Object is a JSON object that keeps member declaration order.
type Object []Member

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for i := range o {
		if o[i].Key == key {
			return o[i].Value, true
		}
	}
	return nil, false
}

// Keys lists member keys in declaration order.
func (o Object) Keys() []string {
	out := make([]string, len(o))
	for i := range o {
		out[i] = o[i].Key
	}
	return out
}

// ErrTooDeep is returned when nesting exceeds DecodeOptions.MaxDepth.
var ErrTooDeep = errors.New("engine: maximum nesting depth exceeded")

// DuplicateKeyError reports a key repeated inside one object.
type DuplicateKeyError struct {
	Key    string
	Offset int64
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("engine: duplicate key %q at offset %d", e.Key, e.Offset)
}

// DecodeOptions bounds ordered decoding. Zero MaxDepth disables the check.
type DecodeOptions struct {
	MaxDepth int
}

// DecodeOrdered builds a value tree from the token source. Objects become
// Object, arrays []any, numbers json.Number.
func DecodeOrdered(src TokenSource, opt DecodeOptions) (any, error) {
	d := &decoder{src: src, opt: opt}
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	v, err := d.value(tok)
	if err != nil {
		return nil, err
	}
	// trailing content after the root value is an error
	if _, err := src.NextToken(); err == nil {
		return nil, fmt.Errorf("engine: unexpected data after root value at offset %d", src.Location())
	} else if !errors.Is(err, io.EOF) {
		return nil, err
	}
	return v, nil
}

type decoder struct {
	src   TokenSource
	opt   DecodeOptions
	depth int
}

func (d *decoder) value(tok Token) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return d.object()
	case KindBeginArray:
		return d.array()
	case KindString:
		return tok.String, nil
	case KindNumber:
		return json.Number(tok.Number), nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func (d *decoder) enter() error {
	d.depth++
	if d.opt.MaxDepth > 0 && d.depth > d.opt.MaxDepth {
		return ErrTooDeep
	}
	return nil
}

func (d *decoder) object() (any, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()
	obj := Object{}
	seen := make(map[string]struct{})
	for {
		tok, err := d.src.NextToken()
		if err != nil {
			return nil, eofAsUnexpected(err)
		}
		if tok.Kind == KindEndObject {
			return obj, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		if _, dup := seen[tok.String]; dup {
			return nil, &DuplicateKeyError{Key: tok.String, Offset: tok.Offset}
		}
		seen[tok.String] = struct{}{}
		vt, err := d.src.NextToken()
		if err != nil {
			return nil, eofAsUnexpected(err)
		}
		v, err := d.value(vt)
		if err != nil {
			return nil, err
		}
		obj = append(obj, Member{Key: tok.String, Value: v})
	}
}

func (d *decoder) array() (any, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()
	arr := []any{}
	for {
		tok, err := d.src.NextToken()
		if err != nil {
			return nil, eofAsUnexpected(err)
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := d.value(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func eofAsUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Framer tracks container nesting for tokenizers that, like json.Decoder,
// emit object keys and string values alike.
type Framer struct {
	stack []frame
}

type frame struct {
	object  bool
	wantKey bool
}

// Delim converts one of '{' '}' '[' ']' into a token.
func (f *Framer) Delim(d byte, off int64) Token {
	switch d {
	case '{':
		f.stack = append(f.stack, frame{object: true, wantKey: true})
		return Token{Kind: KindBeginObject, Offset: off}
	case '[':
		f.stack = append(f.stack, frame{})
		return Token{Kind: KindBeginArray, Offset: off}
	}
	if n := len(f.stack); n > 0 {
		f.stack = f.stack[:n-1]
	}
	kind := KindEndArray
	if d == '}' {
		kind = KindEndObject
	}
	// a closed container is the value of its parent member
	return f.Value(Token{Kind: kind, Offset: off})
}

// String returns a key token when an object expects one, else a string value.
func (f *Framer) String(s string, off int64) Token {
	if n := len(f.stack); n > 0 && f.stack[n-1].wantKey {
		f.stack[n-1].wantKey = false
		return Token{Kind: KindKey, String: s, Offset: off}
	}
	return f.Value(Token{Kind: KindString, String: s, Offset: off})
}

// Value records that a member value finished and returns t unchanged.
func (f *Framer) Value(t Token) Token {
	if n := len(f.stack); n > 0 && f.stack[n-1].object {
		f.stack[n-1].wantKey = true
	}
	return t
}
