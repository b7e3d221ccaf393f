package config

import "time"

// Well-known Neo N3 contract hashes.
const (
	NEOHash  = "0xef4073a0f2b305a38ec4050e4d3d28bc40ea63f5"
	GASHash  = "0xd2a4cff31913016155e38e474a2c06d08be276cf"
	BNEOHash = "0x48c40d4666f93408be1bef038b6722404d9a4c2a"
)

// Built-in query endpoints.
const (
	MainnetRPC         = "https://n3seed1.ngd.network:10332"
	MainnetFallbackRPC = "https://mainnet1.neo.coz.io:443"
	TestnetRPC         = "https://testnet1.neo.coz.io:443"
)

// External data sources.
const (
	StatsBlobURL    = "https://neoburger.blob.core.windows.net/data/%d.json"
	StatsMirrorURL  = "https://raw.githubusercontent.com/neoburger/statistics/data/data/%d.json"
	AssetInfoURL    = "https://api.neotube.io/v1/asset/%s"
	DefaultQuoteAPI = "https://onegate.space/api/quote?convert=usd"
	DefaultRelayURL = "https://relay.walletconnect.com"
)

// Statistics windows in blocks.
const (
	StatsLag     = 8192
	StatsWindow  = 131072
	BlocksPerDay = 5760
)

// ValidUntilBlockIncrement is added to the current height when building
// unsigned transactions for fee estimation.
const ValidUntilBlockIncrement = 5000

// RedeemRate is the GAS fee per bNEO burned, as a decimal fraction.
const RedeemRate = "0.001"

// Timeout constants used across cmd and internal packages.
const (
	RPCTimeout       = 15 * time.Second // single JSON-RPC round trip
	RPCSelectTimeout = 10 * time.Second // endpoint health benchmark
	BridgeTimeout    = 30 * time.Second // wallet prompt round trip
)

// Decimals maps asset script hash to the number of decimal places of its
// smallest unit. Assets missing here are treated per provider.
var Decimals = map[string]int32{
	NEOHash:  0,
	GASHash:  8,
	BNEOHash: 8,
}

// Symbols maps the asset symbols wallets report to their script hash.
var Symbols = map[string]string{
	"NEO":  NEOHash,
	"GAS":  GASHash,
	"BNEO": BNEOHash,
}
