package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockchainJSON(t *testing.T) {
	tests := []struct {
		name  string
		chain Blockchain
		data  string
	}{
		{name: "evm", chain: EVMChain(1), data: `{"EVM":{"chain_id":1}}`},
		{name: "icp", chain: ICPLedger("xevnm-gaaaa-aaaar-qafnq-cai"), data: `{"ICP":{"ledger_principal":"xevnm-gaaaa-aaaar-qafnq-cai"}}`},
		{name: "solana", chain: Blockchain{Type: BlockchainSolana}, data: `{"Solana":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(tt.chain)
			require.NoError(t, err)
			assert.JSONEq(t, tt.data, string(out))

			var decoded Blockchain
			require.NoError(t, json.Unmarshal([]byte(tt.data), &decoded))
			assert.Equal(t, tt.chain, decoded)
		})
	}
}

func TestBlockchainIsChainBacked(t *testing.T) {
	assert.True(t, EVMChain(8453).IsChainBacked())
	assert.False(t, ICPLedger("x").IsChainBacked())
	assert.False(t, Blockchain{Type: BlockchainBitcoin}.IsChainBacked())
}

func TestExplorerTxURL(t *testing.T) {
	url, ok := ExplorerTxURL(EVMChain(8453), receiptHash)
	assert.True(t, ok)
	assert.Equal(t, "https://basescan.org/tx/"+receiptHash, url)

	_, ok = ExplorerTxURL(EVMChain(999999), receiptHash)
	assert.False(t, ok)
	_, ok = ExplorerTxURL(ICPLedger("x"), "abc")
	assert.False(t, ok)
}

func TestLookupNetwork(t *testing.T) {
	tests := []struct {
		chainId uint64
		name    string
		ok      bool
	}{
		{chainId: 1, name: "Ethereum", ok: true},
		{chainId: 8453, name: "Base", ok: true},
		{chainId: 10, name: "Optimism", ok: true},
		{chainId: 999999},
	}

	for _, tt := range tests {
		network, ok := LookupNetwork(tt.chainId)
		assert.Equal(t, tt.ok, ok, "chain %d", tt.chainId)
		assert.Equal(t, tt.name, network.Name, "chain %d", tt.chainId)
	}
}

func TestUserAddressFor(t *testing.T) {
	user := &User{
		Id:       3,
		UserType: UserTypeOnramper,
		Addresses: []TransactionAddress{
			{AddressType: AddressTypeICP, Address: "principal"},
			{AddressType: AddressTypeEVM, Address: "0xbb"},
		},
	}

	addr, ok := user.AddressFor(EVMChain(1))
	assert.True(t, ok)
	assert.Equal(t, "0xbb", addr.Address)

	_, ok = user.AddressFor(Blockchain{Type: BlockchainBitcoin})
	assert.False(t, ok)
	assert.True(t, user.IsOnramper())
	assert.False(t, user.IsOfframper())
}
