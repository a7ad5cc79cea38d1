package near

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Near is a client bound to one network.
type Near struct {
	*Client
	*Method
	network Network
}

func New(c *Client, network Network) (*Near, error) {
	if c == nil {
		return nil, errors.New("client cannot be nil")
	}
	network, err := ParseNetwork(string(network))
	if err != nil {
		return nil, err
	}

	return &Near{
		Client:  c,
		Method:  &Method{Client: c},
		network: network,
	}, nil
}

func (n *Near) Network() Network {
	return n.network
}

// Pool resolves the client of a network. Requests for a network without a
// client go to the fallback network.
type Pool struct {
	mu       sync.RWMutex
	nodes    map[Network]*Near
	fallback Network
}

func NewPool(fallback Network, nodes ...*Near) (*Pool, error) {
	p := &Pool{
		nodes:    make(map[Network]*Near),
		fallback: fallback,
	}
	for _, n := range nodes {
		if err := p.Add(n); err != nil {
			return nil, err
		}
	}
	if _, ok := p.nodes[fallback]; !ok {
		return nil, errors.Errorf("no client for fallback network %s", fallback)
	}
	return p, nil
}

func (p *Pool) Add(n *Near) error {
	if n == nil {
		return errors.New("client cannot be nil")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.nodes[n.network]; ok {
		return errors.Errorf("network already registered: %s", n.network)
	}
	p.nodes[n.network] = n
	return nil
}

func (p *Pool) Get(network Network) *Near {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if n, ok := p.nodes[network]; ok {
		return n
	}
	return p.nodes[p.fallback]
}

func (p *Pool) Fallback() *Near {
	return p.Get(p.fallback)
}

// Networks lists the registered networks in a stable order.
func (p *Pool) Networks() []Network {
	p.mu.RLock()
	defer p.mu.RUnlock()
	networks := make([]Network, 0, len(p.nodes))
	for network := range p.nodes {
		networks = append(networks, network)
	}
	sort.Slice(networks, func(i, j int) bool { return networks[i] < networks[j] })
	return networks
}
