package transformer

import (
	"context"

	"github.com/nearzap/nearzap/pkg/zapier"
)

type Kind string

const (
	KindTrigger        Kind = "triggers"
	KindSearch         Kind = "searches"
	KindCreate         Kind = "creates"
	KindAuthentication Kind = "authentication"
)

// AllKinds lists the kinds in the order they are reported.
var AllKinds = []Kind{KindAuthentication, KindTrigger, KindSearch, KindCreate}

type Option func(*Transformer) error

// Operation is a single trigger, search, create or the authentication test.
type Operation interface {
	Perform(ctx context.Context, bundle *zapier.Bundle) (interface{}, *zapier.Error)
	Key() string
	Kind() Kind
}
