package transformer

import (
	"context"
	"sort"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/nearzap/nearzap/pkg/near"
	"github.com/nearzap/nearzap/pkg/zapier"
	"github.com/pkg/errors"
)

type Transformer struct {
	pool       *near.Pool
	debugMode  bool
	logger     log.Logger
	operations map[Kind]map[string]Operation
}

// New creates a new Transformer
func New(pool *near.Pool, operations []Operation, opts ...Option) (*Transformer, error) {
	if pool == nil {
		return nil, errors.New("pool cannot be nil")
	}

	t := &Transformer{
		pool:   pool,
		logger: log.NewNopLogger(),
	}

	for _, op := range operations {
		if err := t.Register(op); err != nil {
			return nil, err
		}
	}

	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Register registers an Operation under its kind and key
func (t *Transformer) Register(op Operation) error {
	if t.operations == nil {
		t.operations = make(map[Kind]map[string]Operation)
	}

	kind, key := op.Kind(), op.Key()
	if t.operations[kind] == nil {
		t.operations[kind] = make(map[string]Operation)
	}
	if _, ok := t.operations[kind][key]; ok {
		return errors.Errorf("operation already exist: %s/%s", kind, key)
	}

	t.operations[kind][key] = op

	return nil
}

// Perform runs the operation registered for kind and key. Panics inside the
// operation are returned as Unknown errors.
func (t *Transformer) Perform(ctx context.Context, kind Kind, key string, bundle *zapier.Bundle) (result interface{}, zerr *zapier.Error) {
	op, zerr := t.getOperation(kind, key)
	if zerr != nil {
		return nil, zerr
	}

	if bundle == nil {
		bundle = &zapier.Bundle{}
	}

	defer func() {
		if r := recover(); r != nil {
			level.Error(t.logger).Log("operation", key, "kind", kind, "msg", "operation panicked", "panic", r)
			result, zerr = nil, zapier.ClassifyRecovered(r)
		}
	}()

	return op.Perform(ctx, bundle)
}

func (t *Transformer) getOperation(kind Kind, key string) (Operation, *zapier.Error) {
	op, ok := t.operations[kind][key]
	if !ok {
		return nil, zapier.NewInvalidDataErrorf("Unknown %s operation: %s", kind, key)
	}
	return op, nil
}

func (t *Transformer) Registered(kind Kind, key string) bool {
	_, ok := t.operations[kind][key]
	return ok
}

// Operations lists the registered keys of every kind, sorted.
func (t *Transformer) Operations() map[Kind][]string {
	listed := make(map[Kind][]string, len(t.operations))
	for kind, ops := range t.operations {
		keys := make([]string, 0, len(ops))
		for key := range ops {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		listed[kind] = keys
	}
	return listed
}

func (t *Transformer) IsDebugEnabled() bool {
	return t.debugMode
}

// DefaultOperations are the operations made available. Creates need a sender and
// are left out without one.
func DefaultOperations(pool *near.Pool, sender near.TransactionSender) []Operation {
	methodNames := &GetMethodNames{Pool: pool}

	operations := []Operation{
		&AuthenticationTest{Pool: pool},

		&ViewAccount{Pool: pool},
		&ViewAccountChanges{Pool: pool},

		&ViewAccessKey{Pool: pool},
		&ViewAccessKeyList{Pool: pool},
		&ViewAccessKeyChangesAll{Pool: pool},
		&ViewAccessKeyChangesSingle{Pool: pool},

		&Block{Pool: pool},
		&BlockChanges{Pool: pool},
		&ChunkDetails{Pool: pool},
		&GasPrice{Pool: pool},
		&ProtocolConfig{Pool: pool},

		&NetworkInfo{Pool: pool},
		&NodeStatus{Pool: pool},
		&ValidationStatus{Pool: pool},
		&GenesisConfig{Pool: pool},

		&TxStatus{Pool: pool},
		&TxStatusReceipts{Pool: pool},
		&Receipt{Pool: pool},

		&ViewContractCode{Pool: pool},
		&ViewContractState{Pool: pool},
		&ViewContractCodeChanges{Pool: pool},
		&ViewContractStateChanges{Pool: pool},
		&CallViewFunction{Pool: pool},
		methodNames,
		&GetMethodNamesTrigger{GetMethodNames: methodNames},
	}

	if sender != nil {
		operations = append(operations,
			&SendTokens{Pool: pool, Sender: sender},
			&CallChangeFunction{Pool: pool, Sender: sender},
		)
	}

	return operations
}

func SetDebug(debug bool) func(*Transformer) error {
	return func(t *Transformer) error {
		t.debugMode = debug
		return nil
	}
}

func SetLogger(l log.Logger) func(*Transformer) error {
	return func(t *Transformer) error {
		t.logger = log.WithPrefix(l, "component", "transformer")
		return nil
	}
}
