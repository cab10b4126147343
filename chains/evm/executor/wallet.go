package executor

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// WalletClient abstracts the wallet/RPC collaborator the state machine
// drives. Implementations submit transactions on behalf of the connected
// account and expose the reads the machine needs between steps.
type WalletClient interface {
	WriteContract(ctx context.Context, to common.Address, a abi.ABI, method string, value *big.Int, args []any, account common.Address) (common.Hash, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error)
	SignTypedData(ctx context.Context, account common.Address, data apitypes.TypedData) ([]byte, error)
}
