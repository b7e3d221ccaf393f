package wallet

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/neoburger/burgerctl/internal/dapi"
)

// ErrNetworkMismatch is reported when the wallet is on another network than
// the one the operation targets.
var ErrNetworkMismatch = &dapi.Error{Type: dapi.ChainNotMatch, Description: "wallet is connected to a different network"}

// Category is the closed error taxonomy.
type Category int

const (
	Unclassified Category = iota
	ProviderUnavailable
	UserDeclined
	SubmissionFailed
	InvalidInput
	InsufficientFunds
	NetworkMismatch
)

func (c Category) String() string {
	switch c {
	case ProviderUnavailable:
		return "provider-unavailable"
	case UserDeclined:
		return "user-declined"
	case SubmissionFailed:
		return "submission-failed"
	case InvalidInput:
		return "invalid-input"
	case InsufficientFunds:
		return "insufficient-funds"
	case NetworkMismatch:
		return "network-mismatch"
	}
	return "unclassified"
}

// Classify maps an error onto the taxonomy.
func Classify(err error) Category {
	if err == nil {
		return Unclassified
	}
	switch dapi.TypeOf(err) {
	case dapi.NoProvider:
		return ProviderUnavailable
	case dapi.ConnectionDenied, dapi.ConnectionRefused, dapi.Canceled:
		return UserDeclined
	case dapi.RPCError:
		return SubmissionFailed
	case dapi.MalformedInput:
		return InvalidInput
	case dapi.InsufficientFunds:
		return InsufficientFunds
	case dapi.ChainNotMatch:
		return NetworkMismatch
	}
	return Unclassified
}

var reportLines = map[string]string{
	dapi.NoProvider:        "No provider available.",
	dapi.ConnectionDenied:  "The user rejected the request to connect with your dApp",
	dapi.ConnectionRefused: "The user rejected the request to connect with your dApp",
	dapi.RPCError:          "There was an error when broadcasting this transaction to the network.",
	dapi.MalformedInput:    "The receiver address provided is not valid.",
	dapi.Canceled:          "The user has canceled this transaction.",
	dapi.InsufficientFunds: "The user has insufficient funds to execute this transaction.",
	dapi.ChainNotMatch:     "The currently opened chain does not match the type of the call chain, please switch the chain.",
}

// Report logs err. Known dAPI types produce their fixed line; anything else
// is logged at error level with the error attached.
func Report(log zerolog.Logger, err error) {
	if err == nil {
		return
	}
	typ := dapi.TypeOf(err)
	if line, ok := reportLines[typ]; ok {
		log.Info().Str("type", typ).Str("category", Classify(err).String()).Msg(line)
		return
	}
	var de *dapi.Error
	if errors.As(err, &de) {
		log.Error().Str("type", de.Type).Str("description", de.Description).Msg("unrecognized wallet error")
		return
	}
	log.Error().Err(err).Msg("wallet error")
}

// Messages is a user-facing catalog keyed by category. Nothing in the
// engine depends on it; front-ends may swap in a localized one.
type Messages map[Category]string

// DefaultMessages is the English catalog.
var DefaultMessages = Messages{
	Unclassified:        "Something went wrong. Please try again.",
	ProviderUnavailable: "Wallet not found. Install or unlock it and try again.",
	UserDeclined:        "The request was rejected in the wallet.",
	SubmissionFailed:    "The transaction could not be broadcast.",
	InvalidInput:        "The request contained an invalid address or argument.",
	InsufficientFunds:   "Insufficient funds for this transaction and its fees.",
	NetworkMismatch:     "Switch the wallet to the expected network and retry.",
}

// Message returns the text for err, falling back to the Unclassified entry
// and then to the error text.
func (m Messages) Message(err error) string {
	if err == nil {
		return ""
	}
	if s, ok := m[Classify(err)]; ok {
		return s
	}
	if s, ok := m[Unclassified]; ok {
		return s
	}
	return err.Error()
}
