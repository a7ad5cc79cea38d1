package near

import (
	"fmt"
	"strings"

	"github.com/nearzap/nearzap/pkg/utils"
	"github.com/pkg/errors"
)

type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkBetanet Network = "betanet"

	DefaultNetwork = NetworkTestnet
)

var AllNetworks = []string{string(NetworkMainnet), string(NetworkTestnet), string(NetworkBetanet)}

func ParseNetwork(network string) (Network, error) {
	network = strings.ToLower(strings.TrimSpace(network))
	if !utils.InStrSlice(AllNetworks, network) {
		return "", errors.Errorf("Invalid network: '%s'", network)
	}
	return Network(network), nil
}

// URL returns the public RPC endpoint of the network. Unknown networks resolve to testnet.
func (n Network) URL() string {
	switch n {
	case NetworkMainnet, NetworkTestnet, NetworkBetanet:
		return fmt.Sprintf("https://rpc.%s.near.org", n)
	default:
		return DefaultNetwork.URL()
	}
}

func (n Network) String() string {
	return string(n)
}
