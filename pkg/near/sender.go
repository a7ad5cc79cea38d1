package near

import (
	"context"
	"encoding/json"
	"math/big"
)

// DefaultFunctionCallGas is attached to change calls that don't specify gas (30 TGas).
const DefaultFunctionCallGas uint64 = 30000000000000

type SendMoneyRequest struct {
	Network    Network
	Signer     *KeyPair
	SenderID   string
	ReceiverID string
	Amount     *big.Int
}

type FunctionCallRequest struct {
	Network    Network
	Signer     *KeyPair
	SenderID   string
	ContractID string
	MethodName string
	// Args is the JSON encoded argument object
	Args    []byte
	Gas     uint64
	Deposit *big.Int
}

// TransactionSender signs, submits and awaits state changing transactions.
// Implementations return the final execution outcome as reported by the node.
type TransactionSender interface {
	SendMoney(ctx context.Context, req *SendMoneyRequest) (json.RawMessage, error)
	FunctionCall(ctx context.Context, req *FunctionCallRequest) (json.RawMessage, error)
}
