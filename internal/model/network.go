package model

import "fmt"

// Node identifies one blockchain peer endpoint.
type Node struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// URL returns the node's HTTP base URL.
func (n Node) URL() string {
	return fmt.Sprintf("http://%s:%d", n.Host, n.Port)
}

// StickerOffer describes the merchant payout target for the STICKERS command.
type StickerOffer struct {
	Price    string `yaml:"price"`    // in Currency units
	Currency string `yaml:"currency"` // fiat symbol or the token itself
	Address  string `yaml:"address"`  // merchant address
}

// NetworkProfile holds the per-token network parameters. Loaded once at
// startup and read-only for the process lifetime.
type NetworkProfile struct {
	Token          string        `yaml:"-"`
	AddressVersion byte          `yaml:"networkVersion"`
	MinAmount      uint64        `yaml:"minValue"`       // base units
	Fee            uint64        `yaml:"transactionFee"` // base units
	Nodes          []Node        `yaml:"nodes"`
	TickerID       string        `yaml:"tickerId"` // external ticker identifier, optional
	Stickers       *StickerOffer `yaml:"stickers"` // optional
}
