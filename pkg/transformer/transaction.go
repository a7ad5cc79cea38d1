package transformer

import (
	"context"

	"github.com/nearzap/nearzap/pkg/near"
	"github.com/nearzap/nearzap/pkg/zapier"
)

type txInput struct {
	networkInput
	TxHash    string `json:"txHash" validate:"required"`
	AccountID string `json:"accountId"`
}

func decodeTxInput(bundle *zapier.Bundle) (*txInput, *zapier.Error) {
	in := new(txInput)
	if zerr := decodeInput(bundle, in); zerr != nil {
		return nil, zerr
	}
	if zerr := validateAccountID(in.AccountID, "Invalid account ID"); zerr != nil {
		return nil, zerr
	}
	return in, nil
}

// TxStatus implements Operation
type TxStatus struct {
	*near.Pool
}

func (o *TxStatus) Key() string { return "txStatus" }

func (o *TxStatus) Kind() Kind { return KindSearch }

func (o *TxStatus) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	in, zerr := decodeTxInput(bundle)
	if zerr != nil {
		return nil, zerr
	}

	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("transaction status"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.TxStatus(ctx, in.TxHash, in.AccountID)
	})
}

// TxStatusReceipts implements Operation
type TxStatusReceipts struct {
	*near.Pool
}

func (o *TxStatusReceipts) Key() string { return "txStatusReceipts" }

func (o *TxStatusReceipts) Kind() Kind { return KindSearch }

func (o *TxStatusReceipts) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	in, zerr := decodeTxInput(bundle)
	if zerr != nil {
		return nil, zerr
	}

	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("transaction status with receipts"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.TxStatusReceipts(ctx, in.TxHash, in.AccountID)
	})
}

// Receipt implements Operation
type Receipt struct {
	*near.Pool
}

func (o *Receipt) Key() string { return "receipt" }

func (o *Receipt) Kind() Kind { return KindSearch }

func (o *Receipt) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in struct {
		networkInput
		ReceiptID string `json:"receiptId" validate:"required"`
	}
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}

	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("receipt"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.Receipt(ctx, in.ReceiptID)
	})
}
