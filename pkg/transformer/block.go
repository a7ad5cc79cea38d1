package transformer

import (
	"context"

	"github.com/nearzap/nearzap/pkg/near"
	"github.com/nearzap/nearzap/pkg/normalize"
	"github.com/nearzap/nearzap/pkg/zapier"
)

type blockInput struct {
	networkInput
	normalize.BlockInput
}

// Block implements Operation
type Block struct {
	*near.Pool
}

func (o *Block) Key() string { return "block" }

func (o *Block) Kind() Kind { return KindSearch }

func (o *Block) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in blockInput
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}

	block := normalize.ResolveBlockReference(in.BlockInput)
	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("block details"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.Block(ctx, block)
	})
}

// BlockChanges implements Operation
type BlockChanges struct {
	*near.Pool
}

func (o *BlockChanges) Key() string { return "blockChanges" }

func (o *BlockChanges) Kind() Kind { return KindSearch }

func (o *BlockChanges) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in blockInput
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}

	block := normalize.ResolveBlockReference(in.BlockInput)
	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("block changes"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.BlockChanges(ctx, block)
	})
}

// ChunkDetails implements Operation
type ChunkDetails struct {
	*near.Pool
}

func (o *ChunkDetails) Key() string { return "chunkDetails" }

func (o *ChunkDetails) Kind() Kind { return KindSearch }

func (o *ChunkDetails) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in struct {
		networkInput
		normalize.ChunkInput
	}
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}

	chunk, err := normalize.ResolveChunkID(in.ChunkInput)
	if err != nil {
		return nil, zapier.NewInvalidDataError(err.Error())
	}

	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("chunk details"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.Chunk(ctx, chunk)
	})
}

// GasPrice implements Operation
type GasPrice struct {
	*near.Pool
}

func (o *GasPrice) Key() string { return "gasPrice" }

func (o *GasPrice) Kind() Kind { return KindSearch }

func (o *GasPrice) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in blockInput
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}

	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("gas price"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		price, err := n.GasPrice(ctx, in.BlockID)
		if err != nil {
			return nil, err
		}
		return map[string]string{"gasPrice": price.GasPrice}, nil
	})
}

// ProtocolConfig implements Operation
type ProtocolConfig struct {
	*near.Pool
}

func (o *ProtocolConfig) Key() string { return "protocolConfig" }

func (o *ProtocolConfig) Kind() Kind { return KindSearch }

func (o *ProtocolConfig) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in blockInput
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}

	block := normalize.ResolveBlockReference(in.BlockInput)
	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("protocol config"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.ProtocolConfig(ctx, block)
	})
}
