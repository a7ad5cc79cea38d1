package transformer

import (
	"context"

	"github.com/nearzap/nearzap/pkg/near"
	"github.com/nearzap/nearzap/pkg/normalize"
	"github.com/nearzap/nearzap/pkg/zapier"
)

const accountKeyPairsField = "accountKeyPairs"

// ViewAccessKey implements Operation
type ViewAccessKey struct {
	*near.Pool
}

func (o *ViewAccessKey) Key() string { return "viewAccessKey" }

func (o *ViewAccessKey) Kind() Kind { return KindSearch }

func (o *ViewAccessKey) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in struct {
		accountInput
		AccessKey string `json:"accessKey" validate:"required"`
	}
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}
	if zerr := validateAccountID(in.AccountID, "Invalid account ID"); zerr != nil {
		return nil, zerr
	}
	publicKey, err := near.ParsePublicKey(in.AccessKey)
	if err != nil {
		return nil, zapier.NewInvalidDataError("Invalid access key")
	}

	block := normalize.ResolveBlockReference(in.BlockInput)
	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("access key"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.ViewAccessKey(ctx, in.AccountID, publicKey.String(), block)
	})
}

// ViewAccessKeyList implements Operation
type ViewAccessKeyList struct {
	*near.Pool
}

func (o *ViewAccessKeyList) Key() string { return "viewAccessKeyList" }

func (o *ViewAccessKeyList) Kind() Kind { return KindSearch }

func (o *ViewAccessKeyList) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in accountInput
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}
	if zerr := validateAccountID(in.AccountID, "Invalid account ID"); zerr != nil {
		return nil, zerr
	}

	block := normalize.ResolveBlockReference(in.BlockInput)
	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("access key list"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.ViewAccessKeyList(ctx, in.AccountID, block)
	})
}

// ViewAccessKeyChangesAll implements Operation
type ViewAccessKeyChangesAll struct {
	*near.Pool
}

func (o *ViewAccessKeyChangesAll) Key() string { return "viewAccessKeyChangesAll" }

func (o *ViewAccessKeyChangesAll) Kind() Kind { return KindSearch }

func (o *ViewAccessKeyChangesAll) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in accountsInput
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}
	if zerr := validateAccountIDs(in.AccountIDs); zerr != nil {
		return nil, zerr
	}

	block := normalize.ResolveBlockReference(in.BlockInput)
	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("access keys' changes"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.AccessKeyChanges(ctx, in.AccountIDs, block)
	})
}

// ViewAccessKeyChangesSingle implements Operation
type ViewAccessKeyChangesSingle struct {
	*near.Pool
}

func (o *ViewAccessKeyChangesSingle) Key() string { return "viewAccessKeyChangesSingle" }

func (o *ViewAccessKeyChangesSingle) Kind() Kind { return KindSearch }

func (o *ViewAccessKeyChangesSingle) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in struct {
		networkInput
		normalize.BlockInput
		AccountKeyPairs interface{} `json:"accountKeyPairs"`
	}
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}

	pairsInput, err := normalize.DecodeAccessKeyPairs(in.AccountKeyPairs, bundle.InputKeys(accountKeyPairsField))
	if err != nil {
		return nil, zapier.NewInvalidDataError(err.Error())
	}
	pairs := normalize.ResolveAccessKeyPairs(pairsInput)
	if len(pairs) == 0 {
		return nil, zapier.NewInvalidDataErrorf("Missing required field: %s", accountKeyPairsField)
	}
	for i, pair := range pairs {
		if !near.ValidateAccountID(pair.AccountID) {
			return nil, zapier.NewInvalidDataErrorf("Invalid account ID for account: %s", pair.AccountID)
		}
		publicKey, err := near.ParsePublicKey(pair.PublicKey)
		if err != nil {
			return nil, zapier.NewInvalidDataErrorf("Invalid access key for account: %s", pair.AccountID)
		}
		pairs[i].PublicKey = publicKey.String()
	}

	block := normalize.ResolveBlockReference(in.BlockInput)
	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("access key changes"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.SingleAccessKeyChanges(ctx, pairs, block)
	})
}
