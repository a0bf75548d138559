package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const receiptHash = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"

func TestTransactionLogDecode(t *testing.T) {
	data := `{
		"order_id": 7,
		"action": {"Release": {"Token": null}},
		"status": {"Confirmed": {
			"to": "0x01", "status": 1, "transactionHash": "` + receiptHash + `",
			"blockNumber": 100, "from": "0x02", "logs": [], "blockHash": "0x03",
			"type": "0x2", "transactionIndex": 0, "effectiveGasPrice": 1,
			"logsBloom": "0x", "contractAddress": null, "gasUsed": 21000
		}}
	}`

	var log TransactionLog
	require.NoError(t, json.Unmarshal([]byte(data), &log))
	assert.Equal(t, uint64(7), log.OrderId)
	assert.Equal(t, TransactionActionRelease, log.Action.Type)
	assert.Equal(t, TransactionVariantToken, log.Action.Variant)
	assert.Equal(t, "Release(Token)", log.Action.String())
	require.Equal(t, TransactionStatusConfirmed, log.Status.Type)
	assert.True(t, log.Status.Type.IsTerminal())
	assert.Equal(t, receiptHash, log.Status.Receipt.Hash().Hex())
	assert.True(t, log.Status.Receipt.Succeeded())
}

func TestTransactionStatusDecode(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		status   TransactionStatusType
		terminal bool
	}{
		{name: "pending", data: `{"Pending":null}`, status: TransactionStatusPending},
		{name: "broadcasting", data: `{"Broadcasting":null}`, status: TransactionStatusBroadcasting},
		{name: "malformed", data: `["x"]`, status: ""},
		{name: "failed", data: `{"Failed":"reverted"}`, status: TransactionStatusFailed, terminal: true},
		{name: "broadcast error", data: `{"BroadcastError":{"BlockchainError":{"NonceTooLow":null}}}`, status: TransactionStatusBroadcastError, terminal: true},
		{name: "unresolved", data: `{"Unresolved":["0xabc",{"to":null,"from":null,"gas":21000,"value":null,"max_fee_per_gas":null,"max_priority_fee_per_gas":null,"data":null,"nonce":3,"chain_id":1}]}`, status: TransactionStatusUnresolved, terminal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var status TransactionStatus
			err := json.Unmarshal([]byte(tt.data), &status)
			if tt.status == "" {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.status, status.Type)
			assert.Equal(t, tt.terminal, status.Type.IsTerminal())
		})
	}
}

func TestTransactionStatusDetails(t *testing.T) {
	var status TransactionStatus
	require.NoError(t, json.Unmarshal([]byte(`{"BroadcastError":{"BlockchainError":{"NonceTooLow":null}}}`), &status))
	require.NotNil(t, status.Error)
	assert.Equal(t, "Nonce too low", status.Error.Error())

	require.NoError(t, json.Unmarshal([]byte(`{"Broadcasted":["0xabc",{"gas":1,"chain_id":8453,"nonce":3}]}`), &status))
	assert.Equal(t, "0xabc", status.RawTxHash)
	require.NotNil(t, status.SignRequest)
	assert.Equal(t, uint64(8453), status.SignRequest.ChainId)
	assert.False(t, status.Type.IsTerminal())
}
