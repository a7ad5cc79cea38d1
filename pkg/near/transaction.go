package near

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"unicode"

	"github.com/btcsuite/btcutil/base58"
	"github.com/near/borsh-go"
	"github.com/pkg/errors"
)

const MethodBroadcastTxCommit = "broadcast_tx_commit"

const keyTypeED25519 uint8 = 0

// action variants, in the order the protocol numbers them
const (
	actionCreateAccount borsh.Enum = iota
	actionDeployContract
	actionFunctionCall
	actionTransfer
)

type (
	txPublicKey struct {
		KeyType uint8
		Data    [ed25519.PublicKeySize]byte
	}

	txSignature struct {
		KeyType uint8
		Data    [ed25519.SignatureSize]byte
	}

	txAction struct {
		Enum           borsh.Enum `borsh_enum:"true"`
		CreateAccount  struct{}
		DeployContract struct{ Code []byte }
		FunctionCall   txFunctionCall
		Transfer       txTransfer
	}

	txFunctionCall struct {
		MethodName string
		Args       []byte
		Gas        uint64
		Deposit    big.Int
	}

	txTransfer struct {
		Deposit big.Int
	}

	transaction struct {
		SignerID   string
		PublicKey  txPublicKey
		Nonce      uint64
		ReceiverID string
		BlockHash  [32]byte
		Actions    []txAction
	}

	signedTransaction struct {
		Transaction transaction
		Signature   txSignature
	}

	accessKeyView struct {
		Nonce     uint64 `json:"nonce"`
		BlockHash string `json:"block_hash"`
	}
)

// RPCSender builds, signs and broadcasts transactions through the pool's nodes.
// The nonce and the reference block come from the signer's access key.
type RPCSender struct {
	pool *Pool
}

func NewRPCSender(pool *Pool) (*RPCSender, error) {
	if pool == nil {
		return nil, errors.New("pool cannot be nil")
	}
	return &RPCSender{pool: pool}, nil
}

func (s *RPCSender) SendMoney(ctx context.Context, req *SendMoneyRequest) (json.RawMessage, error) {
	if req.Amount == nil {
		return nil, errors.New("transfer amount cannot be nil")
	}
	action := txAction{Enum: actionTransfer}
	action.Transfer.Deposit.Set(req.Amount)
	return s.send(ctx, req.Network, req.Signer, req.SenderID, req.ReceiverID, action)
}

func (s *RPCSender) FunctionCall(ctx context.Context, req *FunctionCallRequest) (json.RawMessage, error) {
	action := txAction{
		Enum: actionFunctionCall,
		FunctionCall: txFunctionCall{
			MethodName: req.MethodName,
			Args:       req.Args,
			Gas:        req.Gas,
		},
	}
	if req.Deposit != nil {
		action.FunctionCall.Deposit.Set(req.Deposit)
	}
	return s.send(ctx, req.Network, req.Signer, req.SenderID, req.ContractID, action)
}

func (s *RPCSender) send(ctx context.Context, network Network, signer *KeyPair, senderID, receiverID string, actions ...txAction) (json.RawMessage, error) {
	if signer.cleared() {
		return nil, ErrKeyCleared
	}
	n := s.pool.Get(network)
	public := signer.PublicKey()

	raw, err := n.ViewAccessKey(ctx, senderID, public.String(), FinalReference())
	if err != nil {
		return nil, err
	}
	var key accessKeyView
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, errors.Wrap(err, "couldn't decode access key")
	}
	blockHash := base58.Decode(key.BlockHash)
	if len(blockHash) != 32 {
		return nil, errors.Errorf("invalid block hash %q", key.BlockHash)
	}

	tx := transaction{
		SignerID:   senderID,
		PublicKey:  txPublicKey{KeyType: keyTypeED25519},
		Nonce:      key.Nonce + 1,
		ReceiverID: receiverID,
		Actions:    actions,
	}
	copy(tx.PublicKey.Data[:], public.Bytes())
	copy(tx.BlockHash[:], blockHash)

	encoded, hash, err := signTransaction(tx, signer)
	if err != nil {
		return nil, err
	}

	n.GetDebugLogger().Log("function", "send", "msg", "broadcasting transaction", "hash", base58.Encode(hash[:]), "signer", senderID, "receiver", receiverID, "nonce", tx.Nonce)

	var outcome json.RawMessage
	if err := n.Request(ctx, MethodBroadcastTxCommit, []string{encoded}, &outcome); err != nil {
		n.logFailure("send", err, "signer", senderID, "receiver", receiverID)
		return nil, err
	}
	if err := outcomeFailure(outcome); err != nil {
		return nil, err
	}
	return outcome, nil
}

// signTransaction signs the sha256 of the borsh encoded transaction and returns the
// base64 signed transaction together with the transaction hash.
func signTransaction(tx transaction, signer *KeyPair) (string, [sha256.Size]byte, error) {
	var hash [sha256.Size]byte
	serialized, err := borsh.Serialize(tx)
	if err != nil {
		return "", hash, errors.Wrap(err, "couldn't serialize transaction")
	}
	hash = sha256.Sum256(serialized)

	signature, err := signer.Sign(hash[:])
	if err != nil {
		return "", hash, err
	}

	signed := signedTransaction{Transaction: tx, Signature: txSignature{KeyType: keyTypeED25519}}
	copy(signed.Signature.Data[:], signature)

	encoded, err := borsh.Serialize(signed)
	if err != nil {
		return "", hash, errors.Wrap(err, "couldn't serialize signed transaction")
	}
	return base64.StdEncoding.EncodeToString(encoded), hash, nil
}

// outcomeFailure turns a failed execution status into a *RemoteError named after
// the innermost reported failure.
func outcomeFailure(outcome json.RawMessage) error {
	var result struct {
		Status struct {
			Failure json.RawMessage `json:"Failure"`
		} `json:"status"`
		Transaction struct {
			Hash string `json:"hash"`
		} `json:"transaction"`
	}
	if err := json.Unmarshal(outcome, &result); err != nil {
		return errors.Wrap(err, "couldn't decode transaction outcome")
	}
	if len(result.Status.Failure) == 0 || string(result.Status.Failure) == "null" {
		return nil
	}
	return &RemoteError{
		Type:    failureName(result.Status.Failure),
		Message: fmt.Sprintf("Transaction %s failed: %s", result.Transaction.Hash, result.Status.Failure),
		Data:    result.Status.Failure,
	}
}

// failureName follows the capitalized variant names of a failure, e.g.
// {"ActionError":{"kind":{"X":...}}} or {"InvalidTxError":{"X":...}}.
func failureName(raw json.RawMessage) string {
	name := ErrorTypeUntyped
	for depth := 0; depth < 4; depth++ {
		var variant string
		if err := json.Unmarshal(raw, &variant); err == nil {
			if isVariantName(variant) {
				return variant
			}
			return name
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || len(fields) == 0 {
			return name
		}
		if kind, ok := fields["kind"]; ok {
			raw = kind
			continue
		}
		var variants []string
		for k := range fields {
			if isVariantName(k) {
				variants = append(variants, k)
			}
		}
		if len(variants) == 0 {
			return name
		}
		sort.Strings(variants)
		name = variants[0]
		raw = fields[name]
	}
	return name
}

func isVariantName(s string) bool {
	if s == "" || !unicode.IsUpper(rune(s[0])) {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
