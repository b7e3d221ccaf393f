package config

// Config holds all burgerctl configuration.
type Config struct {
	NetworkMode   string `json:"network_mode"`   // "mainnet" | "testnet"
	DefaultWallet string `json:"default_wallet"` // provider used when --wallet is absent
	RPCAlgorithm  string `json:"rpc_algorithm"`  // "failover" | "fastest"
	WatchInterval int    `json:"watch_interval"` // seconds

	// RPC lists the query endpoints per network mode, primary first. When
	// nil the built-in endpoints are used.
	RPC map[string][]string `json:"rpc,omitempty"`

	// CustomRPCs are user-added endpoints tried after the configured ones.
	CustomRPCs map[string][]string `json:"custom_rpcs"`

	// Bridges maps a wallet provider name to its dAPI bridge URL.
	Bridges map[string]string `json:"bridges,omitempty"`

	Relay     RelayConfig `json:"relay"`
	Contracts Contracts   `json:"contracts"`
	Poll      PollConfig  `json:"poll"`

	// ContractsSource is the manifest URL `config sync` reads protocol
	// contracts and endpoints from. LastSynced is RFC 3339.
	ContractsSource string `json:"contracts_source,omitempty"`
	LastSynced      string `json:"last_synced,omitempty"`

	// QuoteAPI is the OneGate quote endpoint used when the price oracle
	// scripts are not configured or fail.
	QuoteAPI string `json:"quote_api,omitempty"`

	// internal: config dir path used for Save()
	configDir string
}

// RelayConfig configures the relay-paired (Neon) wallet.
type RelayConfig struct {
	URL       string `json:"url"`
	ProjectID string `json:"project_id"`
}

// Contracts holds the protocol contract script hashes (0x-prefixed, little
// endian display form) and the base64 scripts run with invokescript.
type Contracts struct {
	NEO            string `json:"neo"`
	GAS            string `json:"gas"`
	BNEO           string `json:"bneo"`
	NoBug          string `json:"nobug,omitempty"`
	Governance     string `json:"governance,omitempty"`
	CommitteeInfo  string `json:"committee_info,omitempty"`
	NNS            string `json:"nns,omitempty"`
	AgentScript    string `json:"agent_script,omitempty"`
	NEOPriceScript string `json:"neo_price_script,omitempty"`
	GASPriceScript string `json:"gas_price_script,omitempty"`
}

// PollConfig controls transaction confirmation polling. MaxAttempts of 0
// polls until interrupted.
type PollConfig struct {
	InitialSeconds float64 `json:"initial_seconds"`
	Multiplier     float64 `json:"multiplier"`
	MaxAttempts    int     `json:"max_attempts"`
}

// Merge overwrites the fields of c that are set in o.
func (c *Contracts) Merge(o Contracts) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.NEO, o.NEO)
	set(&c.GAS, o.GAS)
	set(&c.BNEO, o.BNEO)
	set(&c.NoBug, o.NoBug)
	set(&c.Governance, o.Governance)
	set(&c.CommitteeInfo, o.CommitteeInfo)
	set(&c.NNS, o.NNS)
	set(&c.AgentScript, o.AgentScript)
	set(&c.NEOPriceScript, o.NEOPriceScript)
	set(&c.GASPriceScript, o.GASPriceScript)
}
