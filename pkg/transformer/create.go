package transformer

import (
	"context"
	"encoding/json"
	"math/big"
	"strconv"
	"strings"

	"github.com/nearzap/nearzap/pkg/near"
	"github.com/nearzap/nearzap/pkg/normalize"
	"github.com/nearzap/nearzap/pkg/zapier"
	"github.com/pkg/errors"
)

type signerInput struct {
	networkInput
	SenderAccountID string `json:"senderAccountId"`
	PrivateKey      string `json:"privateKey" validate:"required"`
	AccountID       string `json:"accountId"`
}

// signer loads the sender key. The caller must Clear it.
func (in *signerInput) signer() (*near.KeyPair, *zapier.Error) {
	key, err := near.ParseKeyPair(in.PrivateKey)
	if err != nil {
		return nil, zapier.NewInvalidDataError("Invalid private key")
	}
	return key, nil
}

func parseAmount(amount string) (*big.Int, *zapier.Error) {
	yocto, err := normalize.ToYoctoUnits(amount, normalize.YoctoDecimals)
	if err != nil || yocto.Sign() <= 0 {
		return nil, zapier.NewInvalidDataError("Invalid amount. Amount has to be greater than 0")
	}
	return yocto, nil
}

func parseDeposit(deposit string) (*big.Int, *zapier.Error) {
	if strings.TrimSpace(deposit) == "" {
		return new(big.Int), nil
	}
	yocto, err := normalize.ToYoctoUnits(deposit, normalize.YoctoDecimals)
	if err != nil || yocto.Sign() < 0 {
		return nil, zapier.NewInvalidDataError("Invalid deposit. Deposit has to be non negative")
	}
	return yocto, nil
}

// parseGas reads gas as decimal gas units, defaulting to near.DefaultFunctionCallGas.
func parseGas(gas string) (uint64, *zapier.Error) {
	gas = strings.TrimSpace(gas)
	if gas == "" {
		return near.DefaultFunctionCallGas, nil
	}
	units, err := strconv.ParseUint(gas, 10, 64)
	if err != nil || units == 0 {
		return 0, zapier.NewInvalidDataError("Invalid gas. Gas has to be greater than 0")
	}
	return units, nil
}

// SendTokens implements Operation
type SendTokens struct {
	*near.Pool
	Sender near.TransactionSender
}

func (o *SendTokens) Key() string { return "sendTokens" }

func (o *SendTokens) Kind() Kind { return KindCreate }

func (o *SendTokens) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in struct {
		signerInput
		Amount string `json:"amount" validate:"required"`
	}
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}
	if zerr := validateAccountID(in.SenderAccountID, "Invalid sender account ID"); zerr != nil {
		return nil, zerr
	}
	if zerr := validateAccountID(in.AccountID, "Invalid account ID"); zerr != nil {
		return nil, zerr
	}
	amount, zerr := parseAmount(in.Amount)
	if zerr != nil {
		return nil, zerr
	}

	key, zerr := in.signer()
	if zerr != nil {
		return nil, zerr
	}
	defer key.Clear()

	n := nodeFor(o.Pool, bundle, in.Network)
	return search(ctx, o, n, calling("send tokens function"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return o.Sender.SendMoney(ctx, &near.SendMoneyRequest{
			Network:    n.Network(),
			Signer:     key,
			SenderID:   in.SenderAccountID,
			ReceiverID: in.AccountID,
			Amount:     amount,
		})
	})
}

// CallChangeFunction implements Operation
type CallChangeFunction struct {
	*near.Pool
	Sender near.TransactionSender
}

func (o *CallChangeFunction) Key() string { return "callChangeFunction" }

func (o *CallChangeFunction) Kind() Kind { return KindCreate }

func (o *CallChangeFunction) Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error) {
	var in struct {
		signerInput
		MethodName string                 `json:"methodName" validate:"required"`
		Arguments  map[string]interface{} `json:"arguments"`
		Gas        string                 `json:"gas"`
		Deposit    string                 `json:"deposit"`
	}
	if zerr := decodeInput(bundle, &in); zerr != nil {
		return nil, zerr
	}
	if zerr := validateAccountID(in.SenderAccountID, "Invalid sender account ID"); zerr != nil {
		return nil, zerr
	}
	if zerr := validateAccountID(in.AccountID, "Invalid contract ID"); zerr != nil {
		return nil, zerr
	}
	gas, zerr := parseGas(in.Gas)
	if zerr != nil {
		return nil, zerr
	}
	deposit, zerr := parseDeposit(in.Deposit)
	if zerr != nil {
		return nil, zerr
	}
	args, err := encodeArgs(in.Arguments)
	if err != nil {
		return nil, zapier.NewInvalidDataError(err.Error())
	}

	key, zerr := in.signer()
	if zerr != nil {
		return nil, zerr
	}
	defer key.Clear()

	n := nodeFor(o.Pool, bundle, in.Network)
	return search(ctx, o, n, calling("contract change function"), bundle, func(ctx context.Context, n *near.Near) (interface{}, error) {
		return o.Sender.FunctionCall(ctx, &near.FunctionCallRequest{
			Network:    n.Network(),
			Signer:     key,
			SenderID:   in.SenderAccountID,
			ContractID: in.AccountID,
			MethodName: in.MethodName,
			Args:       args,
			Gas:        gas,
			Deposit:    deposit,
		})
	})
}

// encodeArgs is the JSON argument object of a change call; no arguments is {}.
func encodeArgs(args map[string]interface{}) ([]byte, error) {
	if args == nil {
		args = map[string]interface{}{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't serialize arguments")
	}
	return raw, nil
}
