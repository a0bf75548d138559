package core

import (
	"encoding/json"

	"github.com/pkg/errors"
)

type (
	PaymentProvider struct {
		Type   PaymentProviderType
		Id     string
		Scheme string
		Name   *string
	}

	PaymentProviderType string

	ProviderEntry struct {
		Type     PaymentProviderType
		Provider PaymentProvider
	}

	// ProviderSet is the offramper's (type, provider) list.
	ProviderSet []ProviderEntry

	TransactionAddress struct {
		AddressType AddressType `json:"address_type"`
		Address     string      `json:"address"`
	}

	AddressType string
)

const (
	PaymentProviderPayPal  PaymentProviderType = "PayPal"
	PaymentProviderRevolut PaymentProviderType = "Revolut"

	AddressTypeEVM     AddressType = "EVM"
	AddressTypeICP     AddressType = "ICP"
	AddressTypeSolana  AddressType = "Solana"
	AddressTypeBitcoin AddressType = "Bitcoin"
)

func PayPal(id string) PaymentProvider {
	return PaymentProvider{Type: PaymentProviderPayPal, Id: id}
}

func Revolut(id, scheme string, name *string) PaymentProvider {
	return PaymentProvider{Type: PaymentProviderRevolut, Id: id, Scheme: scheme, Name: name}
}

func (t PaymentProviderType) String() string {
	return string(t)
}

func (t PaymentProviderType) MarshalJSON() ([]byte, error) {
	return encodeVariant(string(t), nil)
}

func (t *PaymentProviderType) UnmarshalJSON(data []byte) error {
	tag, _, err := decodeVariant(data)
	if err != nil {
		return errors.Wrap(err, "decode provider type")
	}
	switch PaymentProviderType(tag) {
	case PaymentProviderPayPal, PaymentProviderRevolut:
		*t = PaymentProviderType(tag)
		return nil
	}
	return errors.Errorf("unknown provider type %q", tag)
}

type revolutPayload struct {
	Id     string  `json:"id"`
	Scheme string  `json:"scheme"`
	Name   *string `json:"name"`
}

func (p PaymentProvider) MarshalJSON() ([]byte, error) {
	switch p.Type {
	case PaymentProviderPayPal:
		return encodeVariant(string(p.Type), map[string]string{"id": p.Id})
	case PaymentProviderRevolut:
		return encodeVariant(string(p.Type), revolutPayload{Id: p.Id, Scheme: p.Scheme, Name: p.Name})
	}
	return nil, errors.Errorf("unknown provider %q", p.Type)
}

func (p *PaymentProvider) UnmarshalJSON(data []byte) error {
	tag, payload, err := decodeVariant(data)
	if err != nil {
		return errors.Wrap(err, "decode provider")
	}

	switch PaymentProviderType(tag) {
	case PaymentProviderPayPal:
		var v struct {
			Id string `json:"id"`
		}
		if err := json.Unmarshal(payload, &v); err != nil {
			return errors.Wrap(err, "decode paypal provider")
		}
		*p = PayPal(v.Id)
	case PaymentProviderRevolut:
		var v revolutPayload
		if err := json.Unmarshal(payload, &v); err != nil {
			return errors.Wrap(err, "decode revolut provider")
		}
		*p = Revolut(v.Id, v.Scheme, v.Name)
	default:
		return errors.Errorf("unknown provider %q", tag)
	}
	return nil
}

func (s ProviderSet) MarshalJSON() ([]byte, error) {
	pairs := make([][2]any, 0, len(s))
	for _, e := range s {
		pairs = append(pairs, [2]any{e.Type, e.Provider})
	}
	return json.Marshal(pairs)
}

func (s *ProviderSet) UnmarshalJSON(data []byte) error {
	var pairs [][2]json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return errors.Wrap(err, "decode provider set")
	}
	out := make(ProviderSet, 0, len(pairs))
	for _, pair := range pairs {
		var e ProviderEntry
		if err := json.Unmarshal(pair[0], &e.Type); err != nil {
			return err
		}
		if err := json.Unmarshal(pair[1], &e.Provider); err != nil {
			return err
		}
		out = append(out, e)
	}
	*s = out
	return nil
}

func (s ProviderSet) Get(t PaymentProviderType) (PaymentProvider, bool) {
	for _, e := range s {
		if e.Type == t {
			return e.Provider, true
		}
	}
	return PaymentProvider{}, false
}

func (t AddressType) MarshalJSON() ([]byte, error) {
	return encodeVariant(string(t), nil)
}

func (t *AddressType) UnmarshalJSON(data []byte) error {
	tag, _, err := decodeVariant(data)
	if err != nil {
		return errors.Wrap(err, "decode address type")
	}
	switch AddressType(tag) {
	case AddressTypeEVM, AddressTypeICP, AddressTypeSolana, AddressTypeBitcoin:
		*t = AddressType(tag)
		return nil
	}
	return errors.Errorf("unknown address type %q", tag)
}

// Matches reports whether an address of this type can receive funds on chain.
func (t AddressType) Matches(chain Blockchain) bool {
	return string(t) == string(chain.Type)
}
