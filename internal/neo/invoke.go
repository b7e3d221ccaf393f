package neo

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
)

// ErrStackShape is returned when a stack item does not have the expected
// type or arity.
var ErrStackShape = errors.New("unexpected stack item")

// InvokeResult is the result of invokefunction / invokescript.
type InvokeResult struct {
	Script      string      `json:"script"`
	State       string      `json:"state"`
	GasConsumed string      `json:"gasconsumed"`
	Exception   *string     `json:"exception"`
	Stack       []StackItem `json:"stack"`
}

// Halted reports whether the invocation ended in HALT.
func (r *InvokeResult) Halted() bool {
	return r != nil && r.State == VMStateHalt
}

// First returns the first stack item of a halted invocation.
func (r *InvokeResult) First() (StackItem, error) {
	if r == nil {
		return StackItem{}, fmt.Errorf("%w: no result", ErrStackShape)
	}
	if !r.Halted() {
		msg := r.State
		if r.Exception != nil {
			msg += ": " + *r.Exception
		}
		return StackItem{}, fmt.Errorf("invocation did not halt: %s", msg)
	}
	if len(r.Stack) == 0 {
		return StackItem{}, fmt.Errorf("%w: empty stack", ErrStackShape)
	}
	return r.Stack[0], nil
}

// StackItem is one VM stack value as rendered by the RPC node.
type StackItem struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Integer decodes an Integer item. Integer values arrive as decimal strings.
func (s StackItem) Integer() (*big.Int, error) {
	if s.Type != "Integer" {
		return nil, fmt.Errorf("%w: want Integer, got %s", ErrStackShape, s.Type)
	}
	var str string
	if err := json.Unmarshal(s.Value, &str); err != nil {
		// Some nodes render small integers as JSON numbers.
		var n json.Number
		if err2 := json.Unmarshal(s.Value, &n); err2 != nil {
			return nil, fmt.Errorf("%w: integer value %s", ErrStackShape, s.Value)
		}
		str = n.String()
	}
	i, ok := new(big.Int).SetString(str, 10)
	if !ok {
		return nil, fmt.Errorf("%w: integer value %q", ErrStackShape, str)
	}
	return i, nil
}

// IntegerString is Integer rendered in base 10, or "" on error.
func (s StackItem) IntegerString() string {
	i, err := s.Integer()
	if err != nil {
		return ""
	}
	return i.String()
}

// Bytes decodes a ByteString or Buffer item.
func (s StackItem) Bytes() ([]byte, error) {
	if s.Type != "ByteString" && s.Type != "Buffer" {
		return nil, fmt.Errorf("%w: want ByteString, got %s", ErrStackShape, s.Type)
	}
	var str string
	if err := json.Unmarshal(s.Value, &str); err != nil {
		return nil, fmt.Errorf("%w: bytes value %s", ErrStackShape, s.Value)
	}
	return base64.StdEncoding.DecodeString(str)
}

// Text decodes a ByteString item as UTF-8 text.
func (s StackItem) Text() (string, error) {
	b, err := s.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Base64 returns the raw base64 payload of a ByteString item.
func (s StackItem) Base64() (string, error) {
	var str string
	if err := json.Unmarshal(s.Value, &str); err != nil {
		return "", fmt.Errorf("%w: bytes value %s", ErrStackShape, s.Value)
	}
	return str, nil
}

// Bool decodes a Boolean item. Integer items are true when non-zero.
func (s StackItem) Bool() (bool, error) {
	switch s.Type {
	case "Boolean":
		var b bool
		if err := json.Unmarshal(s.Value, &b); err != nil {
			return false, fmt.Errorf("%w: boolean value %s", ErrStackShape, s.Value)
		}
		return b, nil
	case "Integer":
		i, err := s.Integer()
		if err != nil {
			return false, err
		}
		return i.Sign() != 0, nil
	}
	return false, fmt.Errorf("%w: want Boolean, got %s", ErrStackShape, s.Type)
}

// Items decodes an Array or Struct item.
func (s StackItem) Items() ([]StackItem, error) {
	if s.Type != "Array" && s.Type != "Struct" {
		return nil, fmt.Errorf("%w: want Array, got %s", ErrStackShape, s.Type)
	}
	var items []StackItem
	if err := json.Unmarshal(s.Value, &items); err != nil {
		return nil, fmt.Errorf("%w: array value: %v", ErrStackShape, err)
	}
	return items, nil
}

// IsNull reports whether the item is the Any/null value.
func (s StackItem) IsNull() bool {
	return s.Type == "Any" || len(s.Value) == 0 || string(s.Value) == "null"
}
