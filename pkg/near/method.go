package near

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

type Method struct {
	*Client
}

// Query performs a query call. Query results that carry an error field are
// returned as *RemoteError.
func (m *Method) Query(ctx context.Context, req *QueryRequest) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := m.Request(ctx, MethodQuery, req, &raw); err != nil {
		m.logFailure("Query", err, "request_type", req.RequestType, "account_id", req.AccountID)
		return nil, err
	}

	var failed struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(raw, &failed); err == nil && failed.Error != nil {
		err := newQueryError(req.RequestType, *failed.Error)
		m.logFailure("Query", err, "request_type", req.RequestType, "account_id", req.AccountID)
		return nil, err
	}

	return raw, nil
}

func (m *Method) queryInto(ctx context.Context, req *QueryRequest, result interface{}) error {
	raw, err := m.Query(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return errors.Wrapf(err, "couldn't decode %s result", req.RequestType)
	}
	return nil
}

func (m *Method) ViewAccount(ctx context.Context, accountID string, block BlockReference) (json.RawMessage, error) {
	return m.Query(ctx, &QueryRequest{
		RequestType: RequestViewAccount,
		AccountID:   accountID,
		Block:       block,
	})
}

func (m *Method) ViewAccessKey(ctx context.Context, accountID, publicKey string, block BlockReference) (json.RawMessage, error) {
	return m.Query(ctx, &QueryRequest{
		RequestType: RequestViewAccessKey,
		AccountID:   accountID,
		PublicKey:   publicKey,
		Block:       block,
	})
}

func (m *Method) ViewAccessKeyList(ctx context.Context, accountID string, block BlockReference) (*AccessKeyList, error) {
	list := new(AccessKeyList)
	err := m.queryInto(ctx, &QueryRequest{
		RequestType: RequestViewAccessKeyList,
		AccountID:   accountID,
		Block:       block,
	}, list)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (m *Method) ViewCode(ctx context.Context, accountID string, block BlockReference) (*ContractCode, error) {
	code := new(ContractCode)
	err := m.queryInto(ctx, &QueryRequest{
		RequestType: RequestViewCode,
		AccountID:   accountID,
		Block:       block,
	}, code)
	if err != nil {
		return nil, err
	}
	return code, nil
}

func (m *Method) ViewState(ctx context.Context, accountID, prefixBase64 string, block BlockReference) (json.RawMessage, error) {
	return m.Query(ctx, &QueryRequest{
		RequestType:  RequestViewState,
		AccountID:    accountID,
		PrefixBase64: prefixBase64,
		Block:        block,
	})
}

func (m *Method) CallFunction(ctx context.Context, accountID, methodName, argsBase64 string, block BlockReference) (*CallResult, error) {
	result := new(CallResult)
	err := m.queryInto(ctx, &QueryRequest{
		RequestType: RequestCallFunction,
		AccountID:   accountID,
		MethodName:  methodName,
		ArgsBase64:  argsBase64,
		Block:       block,
	}, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (m *Method) Block(ctx context.Context, block BlockReference) (json.RawMessage, error) {
	return m.raw(ctx, "Block", MethodBlock, block)
}

func (m *Method) BlockChanges(ctx context.Context, block BlockReference) (json.RawMessage, error) {
	return m.raw(ctx, "BlockChanges", MethodChangesInBlock, block)
}

func (m *Method) Chunk(ctx context.Context, chunk ChunkID) (json.RawMessage, error) {
	return m.raw(ctx, "Chunk", MethodChunk, []interface{}{chunk})
}

// GasPrice returns the gas price of the given block, or of the latest block when blockID is zero.
func (m *Method) GasPrice(ctx context.Context, blockID BlockID) (*GasPrice, error) {
	price := new(GasPrice)
	if err := m.Request(ctx, MethodGasPrice, []interface{}{blockID}, price); err != nil {
		m.logFailure("GasPrice", err, "block_id", blockID.String())
		return nil, err
	}
	return price, nil
}

func (m *Method) Status(ctx context.Context) (json.RawMessage, error) {
	return m.raw(ctx, "Status", MethodStatus, []interface{}{})
}

// NodeStatus is Status decoded into the fields health checks rely on.
func (m *Method) NodeStatus(ctx context.Context) (*NodeStatus, error) {
	status := new(NodeStatus)
	if err := m.Request(ctx, MethodStatus, []interface{}{}, status); err != nil {
		m.logFailure("NodeStatus", err)
		return nil, err
	}
	return status, nil
}

func (m *Method) NetworkInfo(ctx context.Context) (json.RawMessage, error) {
	return m.raw(ctx, "NetworkInfo", MethodNetworkInfo, []interface{}{})
}

// Validators returns the validators of the epoch of the given block, or of the
// latest block when blockID is zero.
func (m *Method) Validators(ctx context.Context, blockID BlockID) (json.RawMessage, error) {
	return m.raw(ctx, "Validators", MethodValidators, []interface{}{blockID})
}

func (m *Method) AccountChanges(ctx context.Context, accountIDs []string, block BlockReference) (json.RawMessage, error) {
	return m.changes(ctx, &ChangesRequest{ChangesType: ChangesAccount, AccountIDs: accountIDs, Block: block})
}

func (m *Method) AccessKeyChanges(ctx context.Context, accountIDs []string, block BlockReference) (json.RawMessage, error) {
	return m.changes(ctx, &ChangesRequest{ChangesType: ChangesAllAccessKey, AccountIDs: accountIDs, Block: block})
}

func (m *Method) SingleAccessKeyChanges(ctx context.Context, keys []AccountPublicKey, block BlockReference) (json.RawMessage, error) {
	return m.changes(ctx, &ChangesRequest{ChangesType: ChangesSingleAccessKey, Keys: keys, Block: block})
}

func (m *Method) ContractCodeChanges(ctx context.Context, accountIDs []string, block BlockReference) (json.RawMessage, error) {
	return m.changes(ctx, &ChangesRequest{ChangesType: ChangesContractCode, AccountIDs: accountIDs, Block: block})
}

func (m *Method) ContractStateChanges(ctx context.Context, accountIDs []string, keyPrefixBase64 string, block BlockReference) (json.RawMessage, error) {
	return m.changes(ctx, &ChangesRequest{
		ChangesType:     ChangesData,
		AccountIDs:      accountIDs,
		KeyPrefixBase64: keyPrefixBase64,
		Block:           block,
	})
}

func (m *Method) changes(ctx context.Context, req *ChangesRequest) (json.RawMessage, error) {
	return m.raw(ctx, "Changes", MethodChanges, req)
}

func (m *Method) TxStatus(ctx context.Context, txHash, senderID string) (json.RawMessage, error) {
	return m.raw(ctx, "TxStatus", MethodTx, []string{txHash, senderID})
}

func (m *Method) TxStatusReceipts(ctx context.Context, txHash, senderID string) (json.RawMessage, error) {
	return m.raw(ctx, "TxStatusReceipts", MethodTxStatus, []string{txHash, senderID})
}

func (m *Method) Receipt(ctx context.Context, receiptID string) (json.RawMessage, error) {
	return m.raw(ctx, "Receipt", MethodReceipt, &ReceiptRequest{ReceiptID: receiptID})
}

func (m *Method) GenesisConfig(ctx context.Context) (json.RawMessage, error) {
	return m.raw(ctx, "GenesisConfig", MethodGenesisConfig, []interface{}{})
}

func (m *Method) ProtocolConfig(ctx context.Context, block BlockReference) (json.RawMessage, error) {
	return m.raw(ctx, "ProtocolConfig", MethodProtocolConfig, block)
}

func (m *Method) raw(ctx context.Context, function, method string, params interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := m.Request(ctx, method, params, &raw); err != nil {
		m.logFailure(function, err)
		return nil, err
	}
	return raw, nil
}

func (m *Method) logFailure(function string, err error, keyvals ...interface{}) {
	if !m.IsDebugEnabled() {
		return
	}
	m.GetDebugLogger().Log(append([]interface{}{"function", function, "error", err}, keyvals...)...)
}
