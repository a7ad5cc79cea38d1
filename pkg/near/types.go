package near

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
)

// JSON-RPC method names
const (
	MethodQuery          = "query"
	MethodBlock          = "block"
	MethodChangesInBlock = "EXPERIMENTAL_changes_in_block"
	MethodChanges        = "EXPERIMENTAL_changes"
	MethodChunk          = "chunk"
	MethodGasPrice       = "gas_price"
	MethodStatus         = "status"
	MethodNetworkInfo    = "network_info"
	MethodValidators     = "validators"
	MethodTx             = "tx"
	MethodTxStatus       = "EXPERIMENTAL_tx_status"
	MethodReceipt        = "EXPERIMENTAL_receipt"
	MethodGenesisConfig  = "EXPERIMENTAL_genesis_config"
	MethodProtocolConfig = "EXPERIMENTAL_protocol_config"
)

// query request types
const (
	RequestViewAccount       = "view_account"
	RequestViewAccessKey     = "view_access_key"
	RequestViewAccessKeyList = "view_access_key_list"
	RequestViewCode          = "view_code"
	RequestViewState         = "view_state"
	RequestCallFunction      = "call_function"
)

// EXPERIMENTAL_changes types
const (
	ChangesAccount         = "account_changes"
	ChangesSingleAccessKey = "single_access_key_changes"
	ChangesAllAccessKey    = "all_access_key_changes"
	ChangesContractCode    = "contract_code_changes"
	ChangesData            = "data_changes"
)

type (
	JSONRPCRequest struct {
		JSONRPC string      `json:"jsonrpc"`
		ID      string      `json:"id"`
		Method  string      `json:"method"`
		Params  interface{} `json:"params"`
	}

	JSONRPCResponse struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Result  json.RawMessage `json:"result,omitempty"`
		Error   *JSONRPCError   `json:"error,omitempty"`
	}

	JSONRPCError struct {
		Name    string          `json:"name,omitempty"`
		Cause   *ErrorCause     `json:"cause,omitempty"`
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data,omitempty"`
	}

	ErrorCause struct {
		Name string          `json:"name"`
		Info json.RawMessage `json:"info,omitempty"`
	}
)

// BlockID identifies a block by height or by hash. The zero value identifies nothing.
type BlockID struct {
	height uint64
	hash   string
}

func BlockHeight(height uint64) BlockID {
	return BlockID{height: height}
}

func BlockHash(hash string) BlockID {
	return BlockID{hash: hash}
}

// ParseBlockID treats decimal strings as heights and anything else as a hash.
func ParseBlockID(s string) BlockID {
	if s == "" {
		return BlockID{}
	}
	if isDecimal(s) {
		if height, ok := math.ParseUint64(s); ok {
			return BlockHeight(height)
		}
	}
	return BlockHash(s)
}

func isDecimal(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func (b BlockID) IsZero() bool {
	return b.height == 0 && b.hash == ""
}

func (b BlockID) String() string {
	if b.hash != "" {
		return b.hash
	}
	if b.height != 0 {
		return strconv.FormatUint(b.height, 10)
	}
	return ""
}

func (b BlockID) MarshalJSON() ([]byte, error) {
	switch {
	case b.hash != "":
		return json.Marshal(b.hash)
	case b.height != 0:
		return []byte(strconv.FormatUint(b.height, 10)), nil
	default:
		return []byte("null"), nil
	}
}

func (b *BlockID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*b = BlockID{}
	case len(data) > 0 && data[0] == '"':
		var hash string
		if err := json.Unmarshal(data, &hash); err != nil {
			return err
		}
		*b = BlockHash(hash)
	default:
		height, err := strconv.ParseUint(string(data), 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid block height %s", data)
		}
		*b = BlockHeight(height)
	}
	return nil
}

type Finality string

const (
	FinalityFinal      Finality = "final"
	FinalityOptimistic Finality = "optimistic"
)

// BlockReference selects a block either by id or by finality, never both.
type BlockReference struct {
	BlockID  BlockID
	Finality Finality
}

func FinalReference() BlockReference {
	return BlockReference{Finality: FinalityFinal}
}

// Display is the camel case form used when talking about a reference.
func (r BlockReference) Display() map[string]interface{} {
	if !r.BlockID.IsZero() {
		return map[string]interface{}{"blockId": r.BlockID}
	}
	return map[string]interface{}{"finality": r.finality()}
}

// Query is the form the node expects inside request params.
func (r BlockReference) Query() map[string]interface{} {
	if !r.BlockID.IsZero() {
		return map[string]interface{}{"block_id": r.BlockID}
	}
	return map[string]interface{}{"finality": r.finality()}
}

func (r BlockReference) finality() Finality {
	if r.Finality == "" {
		return FinalityFinal
	}
	return r.Finality
}

func (r BlockReference) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Query())
}

// ChunkID selects a chunk by hash, or by block and shard.
type ChunkID struct {
	Hash    string
	BlockID BlockID
	ShardID int
}

func (c ChunkID) MarshalJSON() ([]byte, error) {
	if c.Hash != "" {
		return json.Marshal(c.Hash)
	}
	return json.Marshal([]interface{}{c.BlockID, c.ShardID})
}

type AccountPublicKey struct {
	AccountID string `json:"account_id"`
	PublicKey string `json:"public_key"`
}

// QueryRequest are the params of the query method.
type QueryRequest struct {
	RequestType  string
	AccountID    string
	PublicKey    string
	PrefixBase64 string
	MethodName   string
	ArgsBase64   string
	Block        BlockReference
}

func (r QueryRequest) MarshalJSON() ([]byte, error) {
	params := r.Block.Query()
	params["request_type"] = r.RequestType
	params["account_id"] = r.AccountID

	switch r.RequestType {
	case RequestViewAccessKey:
		params["public_key"] = r.PublicKey
	case RequestViewState:
		params["prefix_base64"] = r.PrefixBase64
	case RequestCallFunction:
		params["method_name"] = r.MethodName
		params["args_base64"] = r.ArgsBase64
	}

	return json.Marshal(params)
}

// ChangesRequest are the params of EXPERIMENTAL_changes.
type ChangesRequest struct {
	ChangesType     string
	AccountIDs      []string
	Keys            []AccountPublicKey
	KeyPrefixBase64 string
	Block           BlockReference
}

func (r ChangesRequest) MarshalJSON() ([]byte, error) {
	params := r.Block.Query()
	params["changes_type"] = r.ChangesType

	switch r.ChangesType {
	case ChangesSingleAccessKey:
		keys := r.Keys
		if keys == nil {
			keys = []AccountPublicKey{}
		}
		params["keys"] = keys
	case ChangesData:
		params["account_ids"] = nonNil(r.AccountIDs)
		params["key_prefix_base64"] = r.KeyPrefixBase64
	default:
		params["account_ids"] = nonNil(r.AccountIDs)
	}

	return json.Marshal(params)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

type ReceiptRequest struct {
	ReceiptID string `json:"receipt_id"`
}

type (
	AccessKeyList struct {
		Keys        []AccessKeyInfo `json:"keys"`
		BlockHeight uint64          `json:"block_height"`
		BlockHash   string          `json:"block_hash"`
	}

	AccessKeyInfo struct {
		PublicKey string          `json:"public_key"`
		AccessKey json.RawMessage `json:"access_key"`
	}

	ContractCode struct {
		CodeBase64  string `json:"code_base64"`
		Hash        string `json:"hash"`
		BlockHeight uint64 `json:"block_height"`
		BlockHash   string `json:"block_hash"`
	}

	CallResult struct {
		Result      ByteArray `json:"result"`
		Logs        []string  `json:"logs"`
		BlockHeight uint64    `json:"block_height"`
		BlockHash   string    `json:"block_hash"`
	}

	GasPrice struct {
		GasPrice string `json:"gas_price"`
	}

	SyncInfo struct {
		LatestBlockHash   string `json:"latest_block_hash"`
		LatestBlockHeight uint64 `json:"latest_block_height"`
		Syncing           bool   `json:"syncing"`
	}

	NodeStatus struct {
		ChainID  string   `json:"chain_id"`
		SyncInfo SyncInfo `json:"sync_info"`
	}
)

func (l *AccessKeyList) Contains(publicKey string) bool {
	for _, key := range l.Keys {
		if key.PublicKey == publicKey {
			return true
		}
	}
	return false
}

// ByteArray is a byte slice the node encodes as an array of numbers.
type ByteArray []byte

func (b ByteArray) MarshalJSON() ([]byte, error) {
	numbers := make([]int, len(b))
	for i, v := range b {
		numbers[i] = int(v)
	}
	return json.Marshal(numbers)
}

func (b *ByteArray) UnmarshalJSON(data []byte) error {
	var numbers []int
	if err := json.Unmarshal(data, &numbers); err != nil {
		return err
	}
	out := make([]byte, len(numbers))
	for i, n := range numbers {
		if n < 0 || n > 255 {
			return errors.Errorf("byte value out of range at %d: %d", i, n)
		}
		out[i] = byte(n)
	}
	*b = out
	return nil
}
