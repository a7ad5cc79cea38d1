package normalize

import "github.com/nearzap/nearzap/pkg/near"

// ResolveNetwork picks the operation's network, then the authenticated one, then testnet.
func ResolveNetwork(input, auth string) near.Network {
	for _, candidate := range []string{input, auth} {
		if network, err := near.ParseNetwork(candidate); err == nil {
			return network
		}
	}
	return near.DefaultNetwork
}
