package normalize

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/nearzap/nearzap/pkg/near"
	"github.com/pkg/errors"
)

// AccessKeyRecord is one entry of the list form of account/key pairs.
type AccessKeyRecord struct {
	AccountID string `json:"accountId"`
	AccessKey string `json:"accessKey"`
}

// AccessKeyPairsInput holds account/key pairs either as a mapping of account id to
// public key or as a list of records. Order lists the mapping keys as they were received;
// without it the mapping is walked in sorted key order.
type AccessKeyPairsInput struct {
	Mapping map[string]string
	Order   []string
	Records []AccessKeyRecord
}

// DecodeAccessKeyPairs accepts the raw field value: an object or a list of records.
func DecodeAccessKeyPairs(value interface{}, order []string) (AccessKeyPairsInput, error) {
	switch v := value.(type) {
	case nil:
		return AccessKeyPairsInput{}, nil
	case map[string]interface{}:
		mapping := make(map[string]string, len(v))
		for accountID, key := range v {
			publicKey, ok := key.(string)
			if !ok {
				return AccessKeyPairsInput{}, errors.Errorf("public key of %s must be text", accountID)
			}
			mapping[accountID] = publicKey
		}
		return AccessKeyPairsInput{Mapping: mapping, Order: order}, nil
	case map[string]string:
		return AccessKeyPairsInput{Mapping: v, Order: order}, nil
	case []interface{}:
		var records []AccessKeyRecord
		config := &mapstructure.DecoderConfig{Result: &records, TagName: "json", WeaklyTypedInput: true}
		decoder, err := mapstructure.NewDecoder(config)
		if err != nil {
			return AccessKeyPairsInput{}, errors.Wrap(err, "couldn't create decoder")
		}
		if err := decoder.Decode(v); err != nil {
			return AccessKeyPairsInput{}, errors.Wrap(err, "invalid account key pairs")
		}
		return AccessKeyPairsInput{Records: records}, nil
	default:
		return AccessKeyPairsInput{}, errors.Errorf("unsupported account key pairs of type %T", value)
	}
}

// ResolveAccessKeyPairs produces the {account_id, public_key} list the node expects,
// keeping the input order.
func ResolveAccessKeyPairs(in AccessKeyPairsInput) []near.AccountPublicKey {
	if in.Records != nil {
		pairs := make([]near.AccountPublicKey, 0, len(in.Records))
		for _, r := range in.Records {
			pairs = append(pairs, near.AccountPublicKey{AccountID: r.AccountID, PublicKey: r.AccessKey})
		}
		return pairs
	}

	pairs := make([]near.AccountPublicKey, 0, len(in.Mapping))
	for _, accountID := range mappingOrder(in) {
		pairs = append(pairs, near.AccountPublicKey{AccountID: accountID, PublicKey: in.Mapping[accountID]})
	}
	return pairs
}

func mappingOrder(in AccessKeyPairsInput) []string {
	order := make([]string, 0, len(in.Mapping))
	seen := make(map[string]bool, len(in.Mapping))
	for _, accountID := range in.Order {
		if _, ok := in.Mapping[accountID]; ok && !seen[accountID] {
			order = append(order, accountID)
			seen[accountID] = true
		}
	}

	var rest []string
	for accountID := range in.Mapping {
		if !seen[accountID] {
			rest = append(rest, accountID)
		}
	}
	sort.Strings(rest)

	return append(order, rest...)
}

// AccountIDs lists the account ids of the pairs.
func AccountIDs(pairs []near.AccountPublicKey) []string {
	ids := make([]string, len(pairs))
	for i, p := range pairs {
		ids[i] = p.AccountID
	}
	return ids
}

func (r AccessKeyRecord) String() string {
	return fmt.Sprintf("%s:%s", r.AccountID, r.AccessKey)
}
