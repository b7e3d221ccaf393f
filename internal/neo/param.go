package neo

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// ParamKind is the declared type of a contract invocation argument.
type ParamKind string

// Contract parameter kinds.
const (
	KindAny              ParamKind = "Any"
	KindBoolean          ParamKind = "Boolean"
	KindInteger          ParamKind = "Integer"
	KindByteArray        ParamKind = "ByteArray"
	KindString           ParamKind = "String"
	KindHash160          ParamKind = "Hash160"
	KindHash256          ParamKind = "Hash256"
	KindPublicKey        ParamKind = "PublicKey"
	KindSignature        ParamKind = "Signature"
	KindArray            ParamKind = "Array"
	KindMap              ParamKind = "Map"
	KindInteropInterface ParamKind = "InteropInterface"
	KindVoid             ParamKind = "Void"

	// KindAddress is understood by some wallet dAPIs only. It carries a
	// base58 address and is sent to the chain as a Hash160.
	KindAddress ParamKind = "Address"
)

// ErrUnsupportedParam is returned when a parameter cannot be turned into a
// script value.
var ErrUnsupportedParam = errors.New("unsupported parameter")

// Valid reports whether k names a known parameter kind.
func (k ParamKind) Valid() bool {
	if k == KindAddress {
		return true
	}
	_, err := smartcontract.ParseParamType(string(k))
	return err == nil
}

// Param is one positional invocation argument. Array values hold []Param.
type Param struct {
	Type  ParamKind
	Value any
}

// Convenience constructors.

func Any() Param { return Param{Type: KindAny} }
func Bool(v bool) Param { return Param{Type: KindBoolean, Value: v} }
func Integer(v string) Param { return Param{Type: KindInteger, Value: v} }
func String(v string) Param { return Param{Type: KindString, Value: v} }
func Hash160(v string) Param { return Param{Type: KindHash160, Value: v} }
func Hash256(v string) Param { return Param{Type: KindHash256, Value: v} }
func Address(v string) Param { return Param{Type: KindAddress, Value: v} }
func Array(items ...Param) Param { return Param{Type: KindArray, Value: items} }

type wireParam struct {
	Type  ParamKind       `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the dAPI / RPC {"type","value"} form.
func (p Param) MarshalJSON() ([]byte, error) {
	var v any = p.Value
	if p.Type == KindArray {
		items, _ := p.Value.([]Param)
		if items == nil {
			items = []Param{}
		}
		v = items
	}
	return json.Marshal(struct {
		Type  ParamKind `json:"type"`
		Value any       `json:"value"`
	}{p.Type, v})
}

// UnmarshalJSON decodes the {"type","value"} form, recursing into arrays.
func (p *Param) UnmarshalJSON(data []byte) error {
	var w wireParam
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.Type.Valid() {
		return fmt.Errorf("%w: kind %q", ErrUnsupportedParam, w.Type)
	}
	p.Type = w.Type
	p.Value = nil
	if len(w.Value) == 0 || string(w.Value) == "null" {
		return nil
	}
	if w.Type == KindArray {
		var items []Param
		if err := json.Unmarshal(w.Value, &items); err != nil {
			return fmt.Errorf("array param: %w", err)
		}
		p.Value = items
		return nil
	}
	var v any
	if err := json.Unmarshal(w.Value, &v); err != nil {
		return err
	}
	p.Value = v
	return nil
}

// ScriptValue converts the parameter into the Go value neo-go's script
// emitter understands.
func (p Param) ScriptValue() (any, error) {
	switch p.Type {
	case KindAny, KindVoid:
		return p.Value, nil
	case KindBoolean:
		switch v := p.Value.(type) {
		case bool:
			return v, nil
		case string:
			return v == "true", nil
		}
	case KindInteger:
		return toBigInt(p.Value)
	case KindString:
		if s, ok := p.Value.(string); ok {
			return s, nil
		}
	case KindHash160:
		if s, ok := p.Value.(string); ok {
			return util.Uint160DecodeStringLE(strings.TrimPrefix(s, "0x"))
		}
	case KindAddress:
		if s, ok := p.Value.(string); ok {
			return address.StringToUint160(s)
		}
	case KindHash256:
		if s, ok := p.Value.(string); ok {
			return util.Uint256DecodeStringLE(strings.TrimPrefix(s, "0x"))
		}
	case KindByteArray, KindSignature:
		if s, ok := p.Value.(string); ok {
			return base64.StdEncoding.DecodeString(s)
		}
	case KindPublicKey:
		if s, ok := p.Value.(string); ok {
			return hex.DecodeString(s)
		}
	case KindArray:
		items, _ := p.Value.([]Param)
		out := make([]any, 0, len(items))
		for i, item := range items {
			v, err := item.ScriptValue()
			if err != nil {
				return nil, fmt.Errorf("array item %d: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s value %v", ErrUnsupportedParam, p.Type, p.Value)
}

func toBigInt(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		return n, nil
	case int:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case float64:
		return big.NewInt(int64(n)), nil
	case json.Number:
		return toBigInt(n.String())
	case string:
		i, ok := new(big.Int).SetString(n, 10)
		if !ok {
			return nil, fmt.Errorf("%w: integer %q", ErrUnsupportedParam, n)
		}
		return i, nil
	}
	return nil, fmt.Errorf("%w: integer %v", ErrUnsupportedParam, v)
}
