package transformer

import (
	"context"

	"github.com/nearzap/nearzap/pkg/near"
	"github.com/nearzap/nearzap/pkg/normalize"
	"github.com/nearzap/nearzap/pkg/zapier"
)

// ViewAccount implements Operation
type ViewAccount struct {
	*near.Pool
}

func (o *ViewAccount) Key() string { return "viewAccount" }

func (o *ViewAccount) Kind() Kind { return KindSearch }

func (o *ViewAccount) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in accountInput
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}
	if zerr := validateAccountID(in.AccountID, "Invalid account ID"); zerr != nil {
		return nil, zerr
	}

	block := normalize.ResolveBlockReference(in.BlockInput)
	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("account"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.ViewAccount(ctx, in.AccountID, block)
	})
}

// ViewAccountChanges implements Operation
type ViewAccountChanges struct {
	*near.Pool
}

func (o *ViewAccountChanges) Key() string { return "viewAccountChanges" }

func (o *ViewAccountChanges) Kind() Kind { return KindSearch }

func (o *ViewAccountChanges) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in accountsInput
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}
	if zerr := validateAccountIDs(in.AccountIDs); zerr != nil {
		return nil, zerr
	}

	block := normalize.ResolveBlockReference(in.BlockInput)
	return search(ctx, o, nodeFor(o.Pool, bundle, in.Network), getting("account changes"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return n.AccountChanges(ctx, in.AccountIDs, block)
	})
}
