package neo

import (
	"encoding/base64"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bneoHash = "0x48c40d4666f93408be1bef038b6722404d9a4c2a"

// ---------------------------------------------------------------------------
// networks
// ---------------------------------------------------------------------------

func TestNormalizeNetwork(t *testing.T) {
	cases := map[string]string{
		"N3MainNet":    MainNet,
		"MainNet":      MainNet,
		"neo3:mainnet": MainNet,
		"N3TestNet":    TestNet,
		"neo3:testnet": TestNet,
		" TestNet ":    TestNet,
		"N3PrivateNet": "",
		"":             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeNetwork(in), "input %q", in)
	}
}

// ---------------------------------------------------------------------------
// addresses
// ---------------------------------------------------------------------------

func TestScriptHashAddressRoundTrip(t *testing.T) {
	addr, err := AddressFromScriptHash(bneoHash)
	require.NoError(t, err)
	assert.Equal(t, byte('N'), addr[0])

	hash, err := ScriptHashFromAddress(addr)
	require.NoError(t, err)
	assert.Equal(t, bneoHash, hash)
}

func TestScriptHashFromAddressInvalid(t *testing.T) {
	_, err := ScriptHashFromAddress("not-an-address")
	assert.Error(t, err)
}

func TestAddressFromPublicKey(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PublicKey()

	addr, err := AddressFromPublicKey(pub.StringCompressed())
	require.NoError(t, err)
	assert.Equal(t, pub.Address(), addr)

	_, err = AddressFromPublicKey("zz")
	assert.Error(t, err)
}

func TestScriptHashFromStackBytes(t *testing.T) {
	u, err := util.Uint160DecodeStringLE(bneoHash[2:])
	require.NoError(t, err)
	b64 := base64.StdEncoding.EncodeToString(u.BytesBE())

	got, err := ScriptHashFromStackBytes(b64)
	require.NoError(t, err)
	assert.Equal(t, bneoHash, got)

	_, err = ScriptHashFromStackBytes(base64.StdEncoding.EncodeToString([]byte{1, 2}))
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// decimals
// ---------------------------------------------------------------------------

func TestIntegerToDecimal(t *testing.T) {
	assert.Equal(t, "1000", IntegerToDecimal("100000000000", 8))
	assert.Equal(t, "0.00000001", IntegerToDecimal("1", 8))
	assert.Equal(t, "42", IntegerToDecimal("42", 0))
	assert.Equal(t, "", IntegerToDecimal("abc", 8))
}

func TestDecimalToIntegerTruncates(t *testing.T) {
	assert.Equal(t, "150000000", DecimalToInteger("1.5", 8))
	assert.Equal(t, "1", DecimalToInteger("0.000000019", 8))
	assert.Equal(t, "", DecimalToInteger("", 8))
}

func TestDecimalRoundTrip(t *testing.T) {
	values := []string{"0", "1", "7", "100", "123456789", "100000000", "987654321987654321987654321"}
	for _, v := range values {
		for _, unit := range []int32{0, 1, 8, 18} {
			dec := IntegerToDecimal(v, unit)
			assert.Equal(t, v, ShiftedBy(dec, unit), "value %s unit %d", v, unit)
			assert.Equal(t, v, DecimalToInteger(dec, unit), "value %s unit %d", v, unit)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1,001.23", FormatNumber("1001.23"))
	assert.Equal(t, "1,234,567", FormatNumber("1234567"))
	assert.Equal(t, "-12,345.6", FormatNumber("-12345.6"))
	assert.Equal(t, "999", FormatNumber("999"))
	assert.Equal(t, "1,001.2", FormatNumber("1001.29", WithDecimals(1)))
	assert.Equal(t, "5.00", FormatNumber("5", WithDecimals(2)))
	assert.Equal(t, "$1,000", FormatNumber("1000", WithSymbol("$")))
	assert.Equal(t, "-", FormatNumber(""))
	assert.Equal(t, "-", FormatNumber("NaN"))
}

// ---------------------------------------------------------------------------
// params
// ---------------------------------------------------------------------------

func TestParamJSONShape(t *testing.T) {
	args := []Param{
		Hash160(bneoHash),
		Integer("100"),
		Any(),
		Array(Hash256("0x01"), Hash256("0x02")),
	}
	b, err := json.Marshal(args)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"type":"Hash160","value":"`+bneoHash+`"},
		{"type":"Integer","value":"100"},
		{"type":"Any","value":null},
		{"type":"Array","value":[{"type":"Hash256","value":"0x01"},{"type":"Hash256","value":"0x02"}]}
	]`, string(b))

	var back []Param
	require.NoError(t, json.Unmarshal(b, &back))
	require.Len(t, back, 4)
	assert.Equal(t, KindArray, back[3].Type)
	items, ok := back[3].Value.([]Param)
	require.True(t, ok)
	assert.Equal(t, "0x02", items[1].Value)
}

func TestParamUnmarshalRejectsUnknownKind(t *testing.T) {
	var p Param
	err := json.Unmarshal([]byte(`{"type":"Float","value":1}`), &p)
	assert.ErrorIs(t, err, ErrUnsupportedParam)
}

func TestParamKindValid(t *testing.T) {
	for _, k := range []ParamKind{KindAny, KindBoolean, KindInteger, KindByteArray, KindString,
		KindHash160, KindHash256, KindPublicKey, KindSignature, KindArray, KindMap,
		KindInteropInterface, KindVoid, KindAddress} {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, ParamKind("Float").Valid())
}

func TestParamScriptValue(t *testing.T) {
	v, err := Integer("12345678901234567890").ScriptValue()
	require.NoError(t, err)
	want, _ := new(big.Int).SetString("12345678901234567890", 10)
	assert.Equal(t, 0, want.Cmp(v.(*big.Int)))

	v, err = Hash160(bneoHash).ScriptValue()
	require.NoError(t, err)
	assert.Equal(t, bneoHash[2:], v.(util.Uint160).StringLE())

	v, err = Array(Bool(true), String("x")).ScriptValue()
	require.NoError(t, err)
	assert.Equal(t, []any{true, "x"}, v)

	_, err = Integer("1.5").ScriptValue()
	assert.ErrorIs(t, err, ErrUnsupportedParam)
}

// ---------------------------------------------------------------------------
// scopes
// ---------------------------------------------------------------------------

func TestSignerScope(t *testing.T) {
	ws, err := SignerScope("").WitnessScope()
	require.NoError(t, err)
	assert.Equal(t, transaction.CalledByEntry, ws)
	assert.Equal(t, 1, ScopeCalledByEntry.Code())
	assert.Equal(t, ScopeCalledByEntry, SignerScope("").OrDefault())
	assert.Equal(t, ScopeGlobal, ScopeGlobal.OrDefault())

	_, err = SignerScope("Everything").WitnessScope()
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// application logs and outcomes
// ---------------------------------------------------------------------------

func TestApplicationLogVerdict(t *testing.T) {
	var nilLog *ApplicationLog
	_, ok := nilLog.Verdict()
	assert.False(t, ok)

	cases := []struct {
		raw    string
		status Status
		ok     bool
	}{
		{`{"txid":"0xabc","executions":[{"vmstate":"HALT"}]}`, StatusSuccess, true},
		{`{"txid":"0xabc","executions":[{"vmstate":"FAULT","exception":"boom"}]}`, StatusError, true},
		{`{"txid":"0xabc","executions":[{"vmState":"HALT"}]}`, StatusSuccess, true},
		{`{"txid":"0xabc","executions":[{"vmstate":"BREAK"}]}`, StatusError, true},
		{`{"txid":"0xabc","executions":[]}`, StatusPending, false},
		{`{"txid":"0xabc"}`, StatusPending, false},
		{`{"txid":"0xabc","executions":[{"vmstate":""}]}`, StatusPending, false},
	}
	for _, tc := range cases {
		var l ApplicationLog
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &l))
		status, ok := l.Verdict()
		assert.Equal(t, tc.status, status, tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
	}
}

func TestOutcomeSubmitted(t *testing.T) {
	assert.False(t, Failed(nil).Submitted())
	assert.False(t, Outcome{Status: StatusError, TxID: FailedTxID}.Submitted())
	assert.True(t, Outcome{Status: StatusError, TxID: "0xdef"}.Submitted())
}

// ---------------------------------------------------------------------------
// stack items
// ---------------------------------------------------------------------------

func TestInvokeResultStack(t *testing.T) {
	raw := `{
		"script":"AA==","state":"HALT","gasconsumed":"100",
		"stack":[{"type":"Array","value":[
			{"type":"Integer","value":"42"},
			{"type":"ByteString","value":"` + base64.StdEncoding.EncodeToString([]byte("hello")) + `"},
			{"type":"Boolean","value":true},
			{"type":"Any"}
		]}]
	}`
	var r InvokeResult
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	first, err := r.First()
	require.NoError(t, err)
	items, err := first.Items()
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, "42", items[0].IntegerString())
	text, err := items[1].Text()
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	b, err := items[2].Bool()
	require.NoError(t, err)
	assert.True(t, b)
	assert.True(t, items[3].IsNull())

	_, err = items[1].Integer()
	assert.ErrorIs(t, err, ErrStackShape)
}

func TestInvokeResultFault(t *testing.T) {
	r := InvokeResult{State: "FAULT"}
	_, err := r.First()
	assert.Error(t, err)
	assert.False(t, r.Halted())
}
