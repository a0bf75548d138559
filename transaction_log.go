package core

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

type (
	TransactionLog struct {
		OrderId uint64            `json:"order_id"`
		Action  TransactionAction `json:"action"`
		Status  TransactionStatus `json:"status"`
	}

	TransactionAction struct {
		Type    TransactionActionType
		Variant TransactionVariant
	}

	TransactionActionType string

	TransactionVariant string

	TransactionStatus struct {
		Type TransactionStatusType

		// Confirmed
		Receipt *TransactionReceipt
		// Failed
		Reason string
		// BroadcastError
		Error *RampError
		// Broadcasted, Unresolved
		RawTxHash   string
		SignRequest *SignRequest
	}

	TransactionStatusType string

	TransactionReceipt struct {
		To                string     `json:"to"`
		Status            uint64     `json:"status"`
		TransactionHash   string     `json:"transactionHash"`
		BlockNumber       uint64     `json:"blockNumber"`
		From              string     `json:"from"`
		Logs              []LogEntry `json:"logs"`
		BlockHash         string     `json:"blockHash"`
		Type              string     `json:"type"`
		TransactionIndex  uint64     `json:"transactionIndex"`
		EffectiveGasPrice uint64     `json:"effectiveGasPrice"`
		LogsBloom         string     `json:"logsBloom"`
		ContractAddress   *string    `json:"contractAddress"`
		GasUsed           uint64     `json:"gasUsed"`
	}

	LogEntry struct {
		Address          string   `json:"address"`
		Topics           []string `json:"topics"`
		Data             string   `json:"data"`
		BlockNumber      *uint64  `json:"blockNumber"`
		TransactionHash  *string  `json:"transactionHash"`
		TransactionIndex *uint64  `json:"transactionIndex"`
		BlockHash        *string  `json:"blockHash"`
		LogIndex         *uint64  `json:"logIndex"`
		Removed          bool     `json:"removed"`
	}

	SignRequest struct {
		To                   *string `json:"to"`
		From                 *string `json:"from"`
		Gas                  uint64  `json:"gas"`
		Value                *uint64 `json:"value"`
		MaxFeePerGas         *uint64 `json:"max_fee_per_gas"`
		MaxPriorityFeePerGas *uint64 `json:"max_priority_fee_per_gas"`
		Data                 []byte  `json:"data"`
		Nonce                *uint64 `json:"nonce"`
		ChainId              uint64  `json:"chain_id"`
	}
)

const (
	TransactionActionCommit   TransactionActionType = "Commit"
	TransactionActionUncommit TransactionActionType = "Uncommit"
	TransactionActionRelease  TransactionActionType = "Release"
	TransactionActionCancel   TransactionActionType = "Cancel"
	TransactionActionTransfer TransactionActionType = "Transfer"

	TransactionVariantNative TransactionVariant = "Native"
	TransactionVariantToken  TransactionVariant = "Token"

	TransactionStatusPending        TransactionStatusType = "Pending"
	TransactionStatusBroadcasting   TransactionStatusType = "Broadcasting"
	TransactionStatusBroadcasted    TransactionStatusType = "Broadcasted"
	TransactionStatusUnresolved     TransactionStatusType = "Unresolved"
	TransactionStatusConfirmed      TransactionStatusType = "Confirmed"
	TransactionStatusFailed         TransactionStatusType = "Failed"
	TransactionStatusBroadcastError TransactionStatusType = "BroadcastError"
)

func (t TransactionStatusType) String() string {
	return string(t)
}

// IsTerminal reports whether the client stops following the log at this
// status.
func (t TransactionStatusType) IsTerminal() bool {
	switch t {
	case TransactionStatusConfirmed,
		TransactionStatusFailed,
		TransactionStatusBroadcastError,
		TransactionStatusUnresolved:
		return true
	}
	return false
}

func (r *TransactionReceipt) Hash() common.Hash {
	return common.HexToHash(r.TransactionHash)
}

func (r *TransactionReceipt) Succeeded() bool {
	return r.Status == 1
}

func (a TransactionAction) hasVariant() bool {
	switch a.Type {
	case TransactionActionRelease, TransactionActionCancel, TransactionActionTransfer:
		return true
	}
	return false
}

func (a TransactionAction) MarshalJSON() ([]byte, error) {
	switch a.Type {
	case TransactionActionCommit, TransactionActionUncommit:
		return encodeVariant(string(a.Type), nil)
	case TransactionActionRelease, TransactionActionCancel, TransactionActionTransfer:
		inner, err := encodeVariant(string(a.Variant), nil)
		if err != nil {
			return nil, err
		}
		return encodeVariant(string(a.Type), json.RawMessage(inner))
	}
	return nil, errors.Errorf("unknown transaction action %q", a.Type)
}

func (a *TransactionAction) UnmarshalJSON(data []byte) error {
	tag, payload, err := decodeVariant(data)
	if err != nil {
		return errors.Wrap(err, "decode transaction action")
	}

	out := TransactionAction{Type: TransactionActionType(tag)}
	switch out.Type {
	case TransactionActionCommit, TransactionActionUncommit:
	case TransactionActionRelease, TransactionActionCancel, TransactionActionTransfer:
		variant, _, err := decodeVariant(payload)
		if err != nil {
			return errors.Wrap(err, "decode transaction variant")
		}
		out.Variant = TransactionVariant(variant)
	default:
		return errors.Errorf("unknown transaction action %q", tag)
	}
	*a = out
	return nil
}

func (s TransactionStatus) MarshalJSON() ([]byte, error) {
	switch s.Type {
	case TransactionStatusPending, TransactionStatusBroadcasting:
		return encodeVariant(string(s.Type), nil)
	case TransactionStatusConfirmed:
		return encodeVariant(string(s.Type), s.Receipt)
	case TransactionStatusFailed:
		return encodeVariant(string(s.Type), s.Reason)
	case TransactionStatusBroadcastError:
		return encodeVariant(string(s.Type), s.Error)
	case TransactionStatusBroadcasted, TransactionStatusUnresolved:
		return encodeVariant(string(s.Type), []any{s.RawTxHash, s.SignRequest})
	}
	return nil, errors.Errorf("unknown transaction status %q", s.Type)
}

func (s *TransactionStatus) UnmarshalJSON(data []byte) error {
	tag, payload, err := decodeVariant(data)
	if err != nil {
		return errors.Wrap(err, "decode transaction status")
	}

	out := TransactionStatus{Type: TransactionStatusType(tag)}
	switch out.Type {
	case TransactionStatusPending, TransactionStatusBroadcasting:
	case TransactionStatusConfirmed:
		var receipt TransactionReceipt
		if err := json.Unmarshal(payload, &receipt); err != nil {
			return errors.Wrap(err, "decode receipt")
		}
		out.Receipt = &receipt
	case TransactionStatusFailed:
		if err := json.Unmarshal(payload, &out.Reason); err != nil {
			return errors.Wrap(err, "decode failure reason")
		}
	case TransactionStatusBroadcastError:
		var rampErr RampError
		if err := json.Unmarshal(payload, &rampErr); err != nil {
			return errors.Wrap(err, "decode broadcast error")
		}
		out.Error = &rampErr
	case TransactionStatusBroadcasted, TransactionStatusUnresolved:
		var pair []json.RawMessage
		if err := json.Unmarshal(payload, &pair); err != nil || len(pair) != 2 {
			return errors.Errorf("decode %s payload: expected [hash, request]", tag)
		}
		if err := json.Unmarshal(pair[0], &out.RawTxHash); err != nil {
			return errors.Wrap(err, "decode raw tx hash")
		}
		var req SignRequest
		if err := json.Unmarshal(pair[1], &req); err != nil {
			return errors.Wrap(err, "decode sign request")
		}
		out.SignRequest = &req
	default:
		return errors.Errorf("unknown transaction status %q", tag)
	}
	*s = out
	return nil
}

func (a TransactionAction) String() string {
	if a.hasVariant() && a.Variant != "" {
		return string(a.Type) + "(" + string(a.Variant) + ")"
	}
	return string(a.Type)
}
