package normalize

import (
	"github.com/nearzap/nearzap/pkg/near"
	"github.com/pkg/errors"
)

var ErrChunkSelector = errors.New("Either a chunk hash, or a block ID and a shard ID are required")

type ChunkInput struct {
	ChunkHash string       `json:"chunkHash"`
	BlockID   near.BlockID `json:"blockId"`
	ShardID   *int         `json:"shardId"`
}

// ResolveChunkID returns the chunk hash when present, otherwise the block and shard pair.
// It fails with ErrChunkSelector when neither form is complete.
func ResolveChunkID(in ChunkInput) (near.ChunkID, error) {
	if in.ChunkHash != "" {
		return near.ChunkID{Hash: in.ChunkHash}, nil
	}
	if in.BlockID.IsZero() || in.ShardID == nil {
		return near.ChunkID{}, ErrChunkSelector
	}
	if *in.ShardID < 0 {
		return near.ChunkID{}, errors.Errorf("Invalid shard ID %d", *in.ShardID)
	}
	return near.ChunkID{BlockID: in.BlockID, ShardID: *in.ShardID}, nil
}
