package core

import (
	"github.com/facebookgo/clock"
	"github.com/pkg/errors"
)

type (
	User struct {
		Id               uint64               `json:"id"`
		UserType         UserType             `json:"user_type"`
		Score            int64                `json:"score"`
		PaymentProviders []PaymentProvider    `json:"payment_providers"`
		Addresses        []TransactionAddress `json:"addresses"`
		Session          *Session             `json:"session,omitempty"`
	}

	UserType string

	Session struct {
		Token     string `json:"token"`
		ExpiresAt uint64 `json:"expires_at"` // nanoseconds
	}

	// UserSession identifies the acting user on authenticated calls.
	UserSession struct {
		UserId uint64
		Token  string
	}
)

const (
	UserTypeOfframper UserType = "Offramper"
	UserTypeOnramper  UserType = "Onramper"
)

func (t UserType) String() string {
	return string(t)
}

func (t UserType) MarshalJSON() ([]byte, error) {
	return encodeVariant(string(t), nil)
}

func (t *UserType) UnmarshalJSON(data []byte) error {
	tag, _, err := decodeVariant(data)
	if err != nil {
		return errors.Wrap(err, "decode user type")
	}
	switch UserType(tag) {
	case UserTypeOfframper, UserTypeOnramper:
		*t = UserType(tag)
		return nil
	}
	return errors.Errorf("unknown user type %q", tag)
}

func (u *User) IsOnramper() bool {
	return u != nil && u.UserType == UserTypeOnramper
}

func (u *User) IsOfframper() bool {
	return u != nil && u.UserType == UserTypeOfframper
}

// AddressFor picks the first address that can receive funds on chain.
func (u *User) AddressFor(chain Blockchain) (TransactionAddress, bool) {
	if u == nil {
		return TransactionAddress{}, false
	}
	for _, addr := range u.Addresses {
		if addr.AddressType.Matches(chain) {
			return addr, true
		}
	}
	return TransactionAddress{}, false
}

// SessionToken returns the token of a session that has not expired yet.
func (u *User) SessionToken(clk clock.Clock) (string, error) {
	if u == nil || u.Session == nil || u.Session.Token == "" {
		return "", ErrNoSession
	}
	if u.Session.ExpiresAt > 0 && uint64(clk.Now().UnixNano()) >= u.Session.ExpiresAt {
		return "", ErrNoSession
	}
	return u.Session.Token, nil
}
