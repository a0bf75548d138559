package core

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

type (
	Blockchain struct {
		Type            BlockchainType
		ChainId         uint64
		LedgerPrincipal string
	}

	BlockchainType string

	Network struct {
		Id       uint64
		Name     string
		Explorer string
	}
)

const (
	BlockchainEVM     BlockchainType = "EVM"
	BlockchainICP     BlockchainType = "ICP"
	BlockchainSolana  BlockchainType = "Solana"
	BlockchainBitcoin BlockchainType = "Bitcoin"
)

var networks = map[uint64]Network{
	1:        {Id: 1, Name: "Ethereum", Explorer: "https://etherscan.io/tx/"},
	10:       {Id: 10, Name: "Optimism", Explorer: "https://optimistic.etherscan.io/tx/"},
	137:      {Id: 137, Name: "Polygon", Explorer: "https://polygonscan.com/tx/"},
	5000:     {Id: 5000, Name: "Mantle", Explorer: "https://mantlescan.xyz/tx/"},
	8453:     {Id: 8453, Name: "Base", Explorer: "https://basescan.org/tx/"},
	42161:    {Id: 42161, Name: "Arbitrum", Explorer: "https://arbiscan.io/tx/"},
	84532:    {Id: 84532, Name: "Base Sepolia", Explorer: "https://sepolia.basescan.org/tx/"},
	11155111: {Id: 11155111, Name: "Sepolia", Explorer: "https://sepolia.etherscan.io/tx/"},
	11155420: {Id: 11155420, Name: "Optimism Sepolia", Explorer: "https://sepolia-optimism.etherscan.io/tx/"},
}

func EVMChain(chainId uint64) Blockchain {
	return Blockchain{Type: BlockchainEVM, ChainId: chainId}
}

func ICPLedger(principal string) Blockchain {
	return Blockchain{Type: BlockchainICP, LedgerPrincipal: principal}
}

// IsChainBacked reports whether actions on this chain are settled by a
// vault transaction that has to be followed through the transaction log.
func (b Blockchain) IsChainBacked() bool {
	return b.Type == BlockchainEVM
}

func (b Blockchain) String() string {
	switch b.Type {
	case BlockchainEVM:
		if n, ok := networks[b.ChainId]; ok {
			return n.Name
		}
		return fmt.Sprintf("EVM(%d)", b.ChainId)
	case BlockchainICP:
		return "ICP"
	default:
		return string(b.Type)
	}
}

func (b Blockchain) MarshalJSON() ([]byte, error) {
	switch b.Type {
	case BlockchainEVM:
		return encodeVariant(string(b.Type), map[string]uint64{"chain_id": b.ChainId})
	case BlockchainICP:
		return encodeVariant(string(b.Type), map[string]string{"ledger_principal": b.LedgerPrincipal})
	case BlockchainSolana, BlockchainBitcoin:
		return encodeVariant(string(b.Type), nil)
	}
	return nil, errors.Errorf("unknown blockchain %q", b.Type)
}

func (b *Blockchain) UnmarshalJSON(data []byte) error {
	tag, payload, err := decodeVariant(data)
	if err != nil {
		return errors.Wrap(err, "decode blockchain")
	}

	switch BlockchainType(tag) {
	case BlockchainEVM:
		var v struct {
			ChainId uint64 `json:"chain_id"`
		}
		if err := json.Unmarshal(payload, &v); err != nil {
			return errors.Wrap(err, "decode evm chain")
		}
		*b = EVMChain(v.ChainId)
	case BlockchainICP:
		var v struct {
			LedgerPrincipal string `json:"ledger_principal"`
		}
		if err := json.Unmarshal(payload, &v); err != nil {
			return errors.Wrap(err, "decode icp ledger")
		}
		*b = ICPLedger(v.LedgerPrincipal)
	case BlockchainSolana, BlockchainBitcoin:
		*b = Blockchain{Type: BlockchainType(tag)}
	default:
		return errors.Errorf("unknown blockchain %q", tag)
	}
	return nil
}

func LookupNetwork(chainId uint64) (Network, bool) {
	n, ok := networks[chainId]
	return n, ok
}

// ExplorerTxURL builds a block explorer link for an EVM transaction hash.
func ExplorerTxURL(chain Blockchain, txHash string) (string, bool) {
	if chain.Type != BlockchainEVM || txHash == "" {
		return "", false
	}
	n, ok := networks[chain.ChainId]
	if !ok {
		return "", false
	}
	return n.Explorer + common.HexToHash(txHash).Hex(), true
}
