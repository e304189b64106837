package domain

import "github.com/shopspring/decimal"

// Mainnet stablecoin mints that get an implicit $1.00 price when the price
// collaborator has no quote for them.
var stablecoinMints = map[string]struct{}{
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": {}, // USDC
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": {}, // USDT
	"USDSwr9ApdHk5bvJKMjzff41FfuX8bSxdKcR81vTwcA":  {}, // USDS
	"2b1kV6DkPAnxd5ixfnxCpjxmKwqjjaYmCZfHsFu24GXo": {}, // PYUSD
}

// StablecoinPrice is the implicit price assumed for allow-listed stablecoins.
var StablecoinPrice = decimal.NewFromInt(1)

// IsStablecoin reports whether the mint is on the fixed stablecoin allow-list.
func IsStablecoin(mint string) bool {
	_, ok := stablecoinMints[mint]
	return ok
}
