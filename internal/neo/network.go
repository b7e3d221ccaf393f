package neo

import "strings"

// Known networks as published in the shared state projection.
const (
	MainNet = "N3MainNet"
	TestNet = "N3TestNet"
)

// NormalizeNetwork maps a provider-specific network identifier onto MainNet,
// TestNet or "" when unknown. Accepted inputs include "N3MainNet",
// "MainNet", "neo3:mainnet" and their testnet counterparts.
func NormalizeNetwork(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "mainnet"):
		return MainNet
	case strings.Contains(s, "testnet"):
		return TestNet
	}
	return ""
}
