// Package normalize turns loosely typed operation input into well formed node
// request params. Everything here is pure.
package normalize

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/nearzap/nearzap/pkg/near"
	"github.com/pkg/errors"
)

// BlockInput is the block selection part of an operation's input.
type BlockInput struct {
	BlockID  near.BlockID  `json:"blockId"`
	Finality near.Finality `json:"finality" validate:"omitempty,oneof=final optimistic"`
}

// ResolveBlockReference applies the precedence block id, then finality, then final.
func ResolveBlockReference(in BlockInput) near.BlockReference {
	if !in.BlockID.IsZero() {
		return near.BlockReference{BlockID: in.BlockID}
	}
	if in.Finality != "" {
		return near.BlockReference{Finality: in.Finality}
	}
	return near.FinalReference()
}

var blockIDType = reflect.TypeOf(near.BlockID{})

// BlockIDHookFunc decodes block ids given as heights (numbers or decimal text) or hashes.
func BlockIDHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != blockIDType {
			return data, nil
		}

		switch v := data.(type) {
		case nil:
			return near.BlockID{}, nil
		case near.BlockID:
			return v, nil
		case string:
			return near.ParseBlockID(strings.TrimSpace(v)), nil
		case json.Number:
			return near.ParseBlockID(v.String()), nil
		case float64:
			if v < 0 || v != math.Trunc(v) || v >= math.MaxUint64 {
				return nil, errors.Errorf("invalid block height %v", v)
			}
			return near.BlockHeight(uint64(v)), nil
		case int:
			if v < 0 {
				return nil, errors.Errorf("invalid block height %d", v)
			}
			return near.BlockHeight(uint64(v)), nil
		case int64:
			if v < 0 {
				return nil, errors.Errorf("invalid block height %d", v)
			}
			return near.BlockHeight(uint64(v)), nil
		case uint64:
			return near.BlockHeight(v), nil
		default:
			return nil, errors.Errorf("invalid block id of type %s: %s", from, strconv.Quote(toString(v)))
		}
	}
}

func toString(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}
