package transformer

import (
	"context"

	"github.com/nearzap/nearzap/pkg/near"
	"github.com/nearzap/nearzap/pkg/zapier"
)

const authenticationKey = "test"

type authInput struct {
	Network    string `json:"network"`
	AccountID  string `json:"accountId"`
	PrivateKey string `json:"privateKey" validate:"required"`
}

// AuthenticationTest checks that the private key of the connected account is
// one of the account's access keys.
type AuthenticationTest struct {
	*near.Pool
}

func (o *AuthenticationTest) Key() string { return authenticationKey }

func (o *AuthenticationTest) Kind() Kind { return KindAuthentication }

func (o *AuthenticationTest) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in authInput
	if err := bundle.DecodeAuth(&in); err != nil {
		return nil, zapier.NewInvalidDataError(err.Error())
	}
	if zerr := validateInput(&in); zerr != nil {
		return nil, zerr
	}
	if zerr := validateAccountID(in.AccountID, "Invalid account ID"); zerr != nil {
		return nil, zerr
	}

	key, err := near.ParseKeyPair(in.PrivateKey)
	if err != nil {
		return nil, zapier.NewInvalidDataError("Invalid private key")
	}
	defer key.Clear()
	publicKey := key.PublicKey().String()

	n := nodeFor(o.Pool, &zapier.Bundle{}, in.Network)
	logger := GetLogger(o, n)
	logger.Log("msg", "Verifying access key authentication with input data: "+logData(bundle.AuthData))

	keys, err := n.ViewAccessKeyList(ctx, in.AccountID, near.FinalReference())
	if err != nil {
		GetErrorLogger(o, n).Log("msg", "Error authenticating access key", "error", err)
		return nil, zapier.Classify(err)
	}

	if !keys.Contains(publicKey) {
		GetErrorLogger(o, n).Log("msg", "Error authenticating access key", "error", "access key not found", "publicKey", publicKey)
		return nil, zapier.NewInvalidDataError("Access key not valid")
	}

	logger.Log("msg", "Verified access key successfully")

	return map[string]string{
		"accountId": in.AccountID,
		"network":   n.Network().String(),
		"publicKey": publicKey,
	}, nil
}
