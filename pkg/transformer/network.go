package transformer

import (
	"context"

	"github.com/nearzap/nearzap/pkg/near"
	"github.com/nearzap/nearzap/pkg/zapier"
)

// NetworkInfo implements Operation
type NetworkInfo struct {
	*near.Pool
}

func (o *NetworkInfo) Key() string { return "networkInfo" }

func (o *NetworkInfo) Kind() Kind { return KindSearch }

func (o *NetworkInfo) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in networkInput
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}

	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("network info"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.NetworkInfo(ctx)
	})
}

// NodeStatus implements Operation
type NodeStatus struct {
	*near.Pool
}

func (o *NodeStatus) Key() string { return "nodeStatus" }

func (o *NodeStatus) Kind() Kind { return KindSearch }

func (o *NodeStatus) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in networkInput
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}

	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("node status"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.Status(ctx)
	})
}

// ValidationStatus implements Operation
type ValidationStatus struct {
	*near.Pool
}

func (o *ValidationStatus) Key() string { return "validationStatus" }

func (o *ValidationStatus) Kind() Kind { return KindSearch }

func (o *ValidationStatus) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in blockInput
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}

	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("validation status"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.Validators(ctx, in.BlockID)
	})
}

// GenesisConfig implements Operation
type GenesisConfig struct {
	*near.Pool
}

func (o *GenesisConfig) Key() string { return "genesisConfig" }

func (o *GenesisConfig) Kind() Kind { return KindSearch }

func (o *GenesisConfig) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in networkInput
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}

	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("genesis config"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.GenesisConfig(ctx)
	})
}
