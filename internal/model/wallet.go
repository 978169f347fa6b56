package model

// Wallet is one custodial wallet row. Exactly one exists per
// (username, platform, token) identity; the address never changes once
// created.
type Wallet struct {
	Username      string `json:"username"`
	Platform      string `json:"platform"`
	Token         string `json:"token"`
	Address       string `json:"address"`
	EncryptedSeed string `json:"-"` // "<32-hex-iv>:<hex blocks>", never serialized
}
