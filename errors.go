package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidOrderState = errors.New("invalid order state")
	ErrNoSession         = errors.New("please authenticate to get a token session")
	ErrUnauthorized      = errors.New("user is not allowed to perform this action")
	ErrNoMatchingAddress = errors.New("no address matches for user")
	ErrNoConsentURL      = errors.New("revolut consent url is not available")
	ErrPriceUnavailable  = errors.New("could not set order price")
	ErrPriceRejected     = errors.New("price change was not accepted")
)

type (
	// RampError is the domain error returned by the order service.
	RampError struct {
		Category RampErrorCategory
		Kind     string
		Detail   string

		payload json.RawMessage
	}

	RampErrorCategory string
)

const (
	RampErrorSystem     RampErrorCategory = "SystemError"
	RampErrorOrder      RampErrorCategory = "OrderError"
	RampErrorUser       RampErrorCategory = "UserError"
	RampErrorBlockchain RampErrorCategory = "BlockchainError"
)

var rampErrorMessages = map[RampErrorCategory]map[string]string{
	RampErrorOrder: {
		"OrderProcessing":           "Order is being processed",
		"OrderInLockTime":           "Order is in lock time",
		"PaymentVerificationFailed": "Payment Verification Failed",
		"InvalidOnramperProvider":   "Invalid onramper provider",
		"OrderTimerNotFound":        "Order Timer Not Found",
		"OrderNotProcessing":        "Order is not being processed",
		"MissingDebtorAccount":      "Missing Debtor Account",
		"OrderNotFound":             "Order Not Found",
		"InvalidOfframperProvider":  "Invalid offramper provider",
		"MissingAccessToken":        "Missing Revolut's Access Token",
		"OrderUncommitted":          "Order is Uncommitted in the EVM vault",
		"PaymentDone":               "Payment is already done",
		"InvalidOrderState":         "Invalid Order State: %s",
	},
	RampErrorUser: {
		"UserNotOfframper":      "User Not Offramper",
		"UserNotOnramper":       "User Not Onramper",
		"UserBanned":            "User score below zero",
		"SignatureRequired":     "Signature is required",
		"SessionNotFound":       "Session not Found",
		"ProviderNotInUser":     "Provider is Not Defined for User: %s",
		"InvalidSignature":      "Signature is not valid",
		"PasswordRequired":      "Password is Required",
		"TokenExpired":          "Token is Expired",
		"Unauthorized":          "User is not authorized",
		"TokenInvalid":          "Token is Invalid",
		"OnlyController":        "Only controller is allowed",
		"UserNotFound":          "User Not Found",
		"UnauthorizedPrincipal": "User is not authorized",
		"InvalidPassword":       "Password is Invalid",
	},
	RampErrorBlockchain: {
		"InvalidAddress":              "Invalid Ethereum address",
		"TransactionTimeout":          "Transaction timeout",
		"ReplacementUnderpriced":      "Replacement transaction underpriced",
		"UnsupportedBlockchain":       "Blockchain is not supported",
		"LedgerPrincipalNotSupported": "Ledger principal %s not supported",
		"EvmExecutionReverted":        "EVM execution reverted: %s",
		"EvmLogError":                 "EVM log error: %s",
		"EthersAbiError":              "Ethers ABI error: %s",
		"ChainIdNotFound":             "Chain ID not found: %s",
		"FundsTooLow":                 "Funds too low",
		"GasLogError":                 "Gas log error: %s",
		"NonceTooLow":                 "Nonce too low",
		"NonceLockTimeout":            "Nonce lock timeout: %s",
		"FundsBelowFees":              "Fees exceed the funds amount",
		"UnregisteredEvmToken":        "Token is unregistered",
		"EmptyTransactionHash":        "Transaction hash is empty",
		"NonceTooHigh":                "Nonce too high",
		"GasEstimationFailed":         "Gas estimation failed",
		"VaultManagerAddressNotFound": "Vault manager address not found for chain ID: %s",
		"InsufficientFunds":           "Insufficient funds",
		"InconsistentStatus":          "Inconsistent transaction status",
		"RpcProviderNotFound":         "RPC provider not found",
	},
	RampErrorSystem: {
		"HttpRequestError":       "HTTP request failed: %s",
		"RpcError":               "Rpc Error: %s",
		"InvalidInput":           "Invalid Input: %s",
		"ICRejectionError":       "IC Rejection: %s",
		"ExchangeRateError":      "Exchange rate error: %s",
		"ParseFloatError":        "Failed to parse float amount: %s",
		"Pkcs8Error":             "pkcs8 error: %s",
		"ParseError":             "Failed to parse response: %s",
		"CurrencySymbolNotFound": "Currency symbol not found",
		"RsaError":               "Rsa Error: %s",
		"CanisterCallError":      "Failed to call exchange rate canister: %s",
		"InternalError":          "Internal Error: %s",
		"Utf8Error":              "Response is not UTF-8 encoded.",
	},
}

func NewRampError(category RampErrorCategory, kind string, detail string) *RampError {
	return &RampError{Category: category, Kind: kind, Detail: detail}
}

func (e *RampError) Error() string {
	return RampErrorToString(e)
}

func (e *RampError) Is(target error) bool {
	switch target {
	case ErrOrderNotFound:
		return e.Category == RampErrorOrder && e.Kind == "OrderNotFound"
	case ErrInvalidOrderState:
		return e.Category == RampErrorOrder && e.Kind == "InvalidOrderState"
	case ErrUnauthorized:
		return e.Category == RampErrorUser && (e.Kind == "Unauthorized" || e.Kind == "UnauthorizedPrincipal")
	case ErrNoSession:
		return e.Category == RampErrorUser && (e.Kind == "SessionNotFound" || e.Kind == "TokenExpired")
	}
	return false
}

// RampErrorToString renders the human readable message for a domain error.
func RampErrorToString(e *RampError) string {
	if e == nil {
		return ""
	}
	format, ok := rampErrorMessages[e.Category][e.Kind]
	if !ok {
		if e.Detail == "" {
			return fmt.Sprintf("%s: %s", e.Category, e.Kind)
		}
		return fmt.Sprintf("%s: %s (%s)", e.Category, e.Kind, e.Detail)
	}
	if strings.Contains(format, "%s") {
		return fmt.Sprintf(format, e.Detail)
	}
	return format
}

func (e *RampError) MarshalJSON() ([]byte, error) {
	var inner []byte
	var err error
	switch {
	case len(e.payload) > 0:
		inner, err = encodeVariant(e.Kind, e.payload)
	case e.Detail != "":
		inner, err = encodeVariant(e.Kind, e.Detail)
	default:
		inner, err = encodeVariant(e.Kind, nil)
	}
	if err != nil {
		return nil, err
	}
	return encodeVariant(string(e.Category), json.RawMessage(inner))
}

func (e *RampError) UnmarshalJSON(data []byte) error {
	category, payload, err := decodeVariant(data)
	if err != nil {
		return errors.Wrap(err, "decode ramp error")
	}
	switch RampErrorCategory(category) {
	case RampErrorSystem, RampErrorOrder, RampErrorUser, RampErrorBlockchain:
	default:
		return errors.Errorf("unknown ramp error category %q", category)
	}

	kind, detail, err := decodeVariant(payload)
	if err != nil {
		return errors.Wrapf(err, "decode %s", category)
	}
	*e = RampError{
		Category: RampErrorCategory(category),
		Kind:     kind,
		Detail:   renderPayload(detail),
	}
	if !isNullPayload(detail) {
		e.payload = detail
	}
	return nil
}

// AsRampError unwraps err into a domain error when it carries one.
func AsRampError(err error) (*RampError, bool) {
	var rampErr *RampError
	if errors.As(err, &rampErr) {
		return rampErr, true
	}
	return nil, false
}
