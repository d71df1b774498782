package tests

import (
	"path"
	"testing"

	"github.com/meridianmint/stablecoin-contract/common"
	istorage "github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

const tokenPath = "../contracts/token"

func deployTokenContract(t *testing.T, e *neotest.Executor) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, tokenPath,
		path.Join(tokenPath, "config.yml"))

	e.DeployContract(t, c, []any{e.CommitteeHash})
	return c.Hash
}

// newTokenInvoker deploys the token contract with the committee account as
// owner, fee controller and fee recipient, and returns a committee-signed
// invoker for it.
func newTokenInvoker(t *testing.T) *neotest.ContractInvoker {
	bc, acc := chain.NewSingle(t)
	e := neotest.NewExecutor(t, bc, acc, acc)
	h := deployTokenContract(t, e)
	return e.CommitteeInvoker(h)
}

func iteratorToArray(iter *istorage.Iterator) []stackitem.Item {
	stackItems := make([]stackitem.Item, 0)
	for iter.Next() {
		stackItems = append(stackItems, iter.Value())
	}
	return stackItems
}

func balanceOf(t *testing.T, c *neotest.ContractInvoker, acc util.Uint160) int64 {
	s, err := c.TestInvoke(t, "balanceOf", acc)
	require.NoError(t, err)
	return s.Pop().BigInt().Int64()
}

func totalSupply(t *testing.T, c *neotest.ContractInvoker) int64 {
	s, err := c.TestInvoke(t, "totalSupply")
	require.NoError(t, err)
	return s.Pop().BigInt().Int64()
}

func TestToken_Version(t *testing.T) {
	c := newTokenInvoker(t)
	c.Invoke(t, common.Version, "version")
}

func TestToken_Info(t *testing.T) {
	c := newTokenInvoker(t)

	c.Invoke(t, "MUSD", "symbol")
	c.Invoke(t, 8, "decimals")
	c.Invoke(t, 0, "totalSupply")
	c.Invoke(t, 0, "feeRate")

	committee := c.CommitteeHash.BytesBE()
	c.Invoke(t, committee, "owner")
	c.Invoke(t, committee, "feeController")
	c.Invoke(t, committee, "feeRecipient")
}

func TestToken_MintBurn(t *testing.T) {
	c := newTokenInvoker(t)

	acc := c.NewAccount(t)
	accHash := acc.ScriptHash()

	h := c.Invoke(t, stackitem.Null{}, "mint", accHash, 1_000)
	aer := c.CheckHalt(t, h)
	require.Equal(t, 1, len(aer.Events))
	require.Equal(t, "Transfer", aer.Events[0].Name)
	require.Equal(t, stackitem.NewArray([]stackitem.Item{
		stackitem.Null{},
		stackitem.NewByteArray(accHash.BytesBE()),
		stackitem.Make(1_000),
	}), aer.Events[0].Item)

	require.EqualValues(t, 1_000, balanceOf(t, c, accHash))
	require.EqualValues(t, 1_000, totalSupply(t, c))

	t.Run("mint requires owner witness", func(t *testing.T) {
		cAcc := c.WithSigners(acc)
		cAcc.InvokeFail(t, common.ErrOwnerWitnessFailed, "mint", accHash, 1)
	})

	t.Run("mint to zero address", func(t *testing.T) {
		c.InvokeFail(t, "zero address", "mint", util.Uint160{}, 1)
	})

	t.Run("burn requires allowance", func(t *testing.T) {
		c.InvokeFail(t, "insufficient allowance", "burn", accHash, 100)
	})

	cAcc := c.WithSigners(acc)
	cAcc.Invoke(t, stackitem.Null{}, "approve", accHash, c.CommitteeHash, 400)

	c.Invoke(t, stackitem.Null{}, "burn", accHash, 400)
	require.EqualValues(t, 600, balanceOf(t, c, accHash))
	require.EqualValues(t, 600, totalSupply(t, c))
}

func TestToken_TransferNoFee(t *testing.T) {
	c := newTokenInvoker(t)

	from := c.NewAccount(t)
	to := c.NewAccount(t)
	fromHash := from.ScriptHash()
	toHash := to.ScriptHash()

	c.Invoke(t, stackitem.Null{}, "mint", fromHash, 10_000)

	cFrom := c.WithSigners(from)
	h := cFrom.Invoke(t, true, "transfer", fromHash, toHash, 10_000, nil)
	aer := c.CheckHalt(t, h)

	// Zero rate means a single balance movement and no fee notification.
	require.Equal(t, 1, len(aer.Events))
	require.Equal(t, "Transfer", aer.Events[0].Name)

	require.EqualValues(t, 0, balanceOf(t, c, fromHash))
	require.EqualValues(t, 10_000, balanceOf(t, c, toHash))

	t.Run("transfer without witness", func(t *testing.T) {
		cTo := c.WithSigners(to)
		cTo.Invoke(t, false, "transfer", fromHash, toHash, 1, nil)
	})

	t.Run("negative amount", func(t *testing.T) {
		cTo := c.WithSigners(to)
		cTo.InvokeFail(t, "negative amount", "transfer", toHash, fromHash, -1, nil)
	})
}

func TestToken_TransferWithFee(t *testing.T) {
	c := newTokenInvoker(t)

	from := c.NewAccount(t)
	to := c.NewAccount(t)
	fromHash := from.ScriptHash()
	toHash := to.ScriptHash()

	c.Invoke(t, stackitem.Null{}, "mint", fromHash, 1_000_000)
	c.Invoke(t, stackitem.Null{}, "setFeeRate", 200)
	c.Invoke(t, 200, "feeRate")

	cFrom := c.WithSigners(from)
	h := cFrom.Invoke(t, true, "transfer", fromHash, toHash, 10_000, nil)
	aer := c.CheckHalt(t, h)

	// Principal and fee movements plus the fee notification itself.
	require.Equal(t, 3, len(aer.Events))
	require.Equal(t, "Transfer", aer.Events[0].Name)
	require.Equal(t, stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(fromHash.BytesBE()),
		stackitem.NewByteArray(toHash.BytesBE()),
		stackitem.Make(9_998),
	}), aer.Events[0].Item)
	require.Equal(t, "Transfer", aer.Events[1].Name)
	require.Equal(t, stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(fromHash.BytesBE()),
		stackitem.NewByteArray(c.CommitteeHash.BytesBE()),
		stackitem.Make(2),
	}), aer.Events[1].Item)
	require.Equal(t, "FeeCollected", aer.Events[2].Name)
	require.Equal(t, stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(fromHash.BytesBE()),
		stackitem.NewByteArray(c.CommitteeHash.BytesBE()),
		stackitem.Make(2),
	}), aer.Events[2].Item)

	require.EqualValues(t, 990_000, balanceOf(t, c, fromHash))
	require.EqualValues(t, 9_998, balanceOf(t, c, toHash))

	// Fee does not leave circulation.
	require.EqualValues(t, 1_000_000, totalSupply(t, c))

	t.Run("amount too small to produce a fee", func(t *testing.T) {
		h := cFrom.Invoke(t, true, "transfer", fromHash, toHash, 4_999, nil)
		aer := c.CheckHalt(t, h)
		require.Equal(t, 1, len(aer.Events))
		require.Equal(t, "Transfer", aer.Events[0].Name)
	})
}

func TestToken_TransferInsufficientBalance(t *testing.T) {
	c := newTokenInvoker(t)

	from := c.NewAccount(t)
	to := c.NewAccount(t)
	fromHash := from.ScriptHash()
	toHash := to.ScriptHash()

	c.Invoke(t, stackitem.Null{}, "mint", fromHash, 9_999)
	c.Invoke(t, stackitem.Null{}, "setFeeRate", 200)

	// The whole transfer is refused upfront, no partial movement happens.
	cFrom := c.WithSigners(from)
	h := cFrom.Invoke(t, false, "transfer", fromHash, toHash, 10_000, nil)
	aer := c.CheckHalt(t, h)
	require.Equal(t, 0, len(aer.Events))

	require.EqualValues(t, 9_999, balanceOf(t, c, fromHash))
	require.EqualValues(t, 0, balanceOf(t, c, toHash))
	require.EqualValues(t, 0, balanceOf(t, c, c.CommitteeHash))
}

func TestToken_GetFeeFor(t *testing.T) {
	c := newTokenInvoker(t)

	c.Invoke(t, 0, "getFeeFor", 10_000)

	c.Invoke(t, stackitem.Null{}, "setFeeRate", 200)

	for _, tc := range []struct {
		amount int64
		fee    int64
	}{
		{amount: 0, fee: 0},
		{amount: 4_999, fee: 0},
		{amount: 5_000, fee: 1},
		{amount: 10_000, fee: 2},
		{amount: 1_000_000, fee: 200},
	} {
		c.Invoke(t, tc.fee, "getFeeFor", tc.amount)
	}

	c.InvokeFail(t, "negative amount", "getFeeFor", -1)
}

func TestToken_SetFeeRate(t *testing.T) {
	c := newTokenInvoker(t)

	h := c.Invoke(t, stackitem.Null{}, "setFeeRate", 500)
	aer := c.CheckHalt(t, h)
	require.Equal(t, 1, len(aer.Events))
	require.Equal(t, "FeeRateSet", aer.Events[0].Name)
	require.Equal(t, stackitem.NewArray([]stackitem.Item{
		stackitem.Make(0),
		stackitem.Make(500),
	}), aer.Events[0].Item)

	c.Invoke(t, 500, "feeRate")

	t.Run("rate above the scale", func(t *testing.T) {
		c.InvokeFail(t, "invalid fee rate", "setFeeRate", 1_000_001)
	})

	t.Run("negative rate", func(t *testing.T) {
		c.InvokeFail(t, "invalid fee rate", "setFeeRate", -1)
	})

	t.Run("full-amount rate", func(t *testing.T) {
		c.Invoke(t, stackitem.Null{}, "setFeeRate", 1_000_000)
		c.Invoke(t, 10_000, "getFeeFor", 10_000)
	})

	t.Run("requires fee controller witness", func(t *testing.T) {
		acc := c.NewAccount(t)
		cAcc := c.WithSigners(acc)
		cAcc.InvokeFail(t, common.ErrFeeControllerWitnessFailed, "setFeeRate", 100)
	})
}

func TestToken_SetFeeRecipient(t *testing.T) {
	c := newTokenInvoker(t)

	from := c.NewAccount(t)
	recipient := c.NewAccount(t)
	to := c.NewAccount(t)
	fromHash := from.ScriptHash()
	recipientHash := recipient.ScriptHash()

	h := c.Invoke(t, stackitem.Null{}, "setFeeRecipient", recipientHash)
	aer := c.CheckHalt(t, h)
	require.Equal(t, 1, len(aer.Events))
	require.Equal(t, "FeeRecipientSet", aer.Events[0].Name)

	c.Invoke(t, recipientHash.BytesBE(), "feeRecipient")

	// Collected fees follow the new recipient.
	c.Invoke(t, stackitem.Null{}, "mint", fromHash, 1_000_000)
	c.Invoke(t, stackitem.Null{}, "setFeeRate", 200)

	cFrom := c.WithSigners(from)
	cFrom.Invoke(t, true, "transfer", fromHash, to.ScriptHash(), 10_000, nil)
	require.EqualValues(t, 2, balanceOf(t, c, recipientHash))

	t.Run("zero address", func(t *testing.T) {
		c.InvokeFail(t, "zero address", "setFeeRecipient", util.Uint160{})
	})

	t.Run("requires fee controller witness", func(t *testing.T) {
		cAcc := c.WithSigners(from)
		cAcc.InvokeFail(t, common.ErrFeeControllerWitnessFailed,
			"setFeeRecipient", fromHash)
	})
}

func TestToken_SetFeeController(t *testing.T) {
	c := newTokenInvoker(t)

	controller := c.NewAccount(t)
	controllerHash := controller.ScriptHash()

	t.Run("requires controller or owner witness", func(t *testing.T) {
		acc := c.NewAccount(t)
		cAcc := c.WithSigners(acc)
		cAcc.InvokeFail(t, "fee controller or owner witness check failed",
			"setFeeController", acc.ScriptHash())
	})

	// Owner hands the role over.
	h := c.Invoke(t, stackitem.Null{}, "setFeeController", controllerHash)
	aer := c.CheckHalt(t, h)
	require.Equal(t, 1, len(aer.Events))
	require.Equal(t, "FeeControllerSet", aer.Events[0].Name)
	require.Equal(t, stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(c.CommitteeHash.BytesBE()),
		stackitem.NewByteArray(controllerHash.BytesBE()),
	}), aer.Events[0].Item)

	c.Invoke(t, controllerHash.BytesBE(), "feeController")

	// Fee policy is now out of the owner's hands.
	c.InvokeFail(t, common.ErrFeeControllerWitnessFailed, "setFeeRate", 100)

	cController := c.WithSigners(controller)
	cController.Invoke(t, stackitem.Null{}, "setFeeRate", 100)

	// The current controller can hand the role over on its own.
	next := c.NewAccount(t)
	cController.Invoke(t, stackitem.Null{}, "setFeeController", next.ScriptHash())
	c.Invoke(t, next.ScriptHash().BytesBE(), "feeController")

	// And the owner can always take it back.
	c.Invoke(t, stackitem.Null{}, "setFeeController", c.CommitteeHash)

	t.Run("zero address", func(t *testing.T) {
		c.InvokeFail(t, "zero address", "setFeeController", util.Uint160{})
	})
}

func TestToken_ApproveTransferFrom(t *testing.T) {
	c := newTokenInvoker(t)

	owner := c.NewAccount(t)
	spender := c.NewAccount(t)
	receiver := c.NewAccount(t)
	ownerHash := owner.ScriptHash()
	spenderHash := spender.ScriptHash()
	receiverHash := receiver.ScriptHash()

	c.Invoke(t, stackitem.Null{}, "mint", ownerHash, 10_000)

	cOwner := c.WithSigners(owner)
	h := cOwner.Invoke(t, stackitem.Null{}, "approve", ownerHash, spenderHash, 500)
	aer := c.CheckHalt(t, h)
	require.Equal(t, 1, len(aer.Events))
	require.Equal(t, "Approval", aer.Events[0].Name)

	c.Invoke(t, 500, "allowance", ownerHash, spenderHash)

	cSpender := c.WithSigners(spender)
	cSpender.Invoke(t, true, "transferFrom", spenderHash, ownerHash, receiverHash, 300, nil)

	require.EqualValues(t, 9_700, balanceOf(t, c, ownerHash))
	require.EqualValues(t, 300, balanceOf(t, c, receiverHash))
	c.Invoke(t, 200, "allowance", ownerHash, spenderHash)

	t.Run("allowance exceeded", func(t *testing.T) {
		cSpender.InvokeFail(t, "insufficient allowance",
			"transferFrom", spenderHash, ownerHash, receiverHash, 300, nil)
	})

	t.Run("no spender witness", func(t *testing.T) {
		cOwner.Invoke(t, false, "transferFrom", spenderHash, ownerHash, receiverHash, 100, nil)
	})

	t.Run("zero receiver", func(t *testing.T) {
		cSpender.InvokeFail(t, "zero address",
			"transferFrom", spenderHash, ownerHash, util.Uint160{}, 100, nil)
	})

	t.Run("approve requires account witness", func(t *testing.T) {
		cSpender.InvokeFail(t, common.ErrWitnessFailed,
			"approve", ownerHash, spenderHash, 1_000)
	})

	t.Run("approve zero spender", func(t *testing.T) {
		cOwner.InvokeFail(t, "zero address", "approve", ownerHash, util.Uint160{}, 100)
	})
}

func TestToken_TransferFromInsufficientBalance(t *testing.T) {
	c := newTokenInvoker(t)

	owner := c.NewAccount(t)
	spender := c.NewAccount(t)
	receiver := c.NewAccount(t)
	ownerHash := owner.ScriptHash()
	spenderHash := spender.ScriptHash()

	c.Invoke(t, stackitem.Null{}, "mint", ownerHash, 9_999)

	cOwner := c.WithSigners(owner)
	cOwner.Invoke(t, stackitem.Null{}, "approve", ownerHash, spenderHash, 10_000)

	// Refused transfer must not eat the allowance.
	cSpender := c.WithSigners(spender)
	cSpender.Invoke(t, false, "transferFrom", spenderHash, ownerHash,
		receiver.ScriptHash(), 10_000, nil)

	c.Invoke(t, 10_000, "allowance", ownerHash, spenderHash)
	require.EqualValues(t, 9_999, balanceOf(t, c, ownerHash))
}

func TestToken_Freeze(t *testing.T) {
	c := newTokenInvoker(t)

	acc := c.NewAccount(t)
	accHash := acc.ScriptHash()

	c.Invoke(t, false, "isFrozen", accHash)

	h := c.Invoke(t, stackitem.Null{}, "toggleFreeze", accHash)
	aer := c.CheckHalt(t, h)
	require.Equal(t, 1, len(aer.Events))
	require.Equal(t, "AddressFrozen", aer.Events[0].Name)

	c.Invoke(t, true, "isFrozen", accHash)

	// The second toggle restores the original state.
	h = c.Invoke(t, stackitem.Null{}, "toggleFreeze", accHash)
	aer = c.CheckHalt(t, h)
	require.Equal(t, 1, len(aer.Events))
	require.Equal(t, "AddressUnfrozen", aer.Events[0].Name)

	c.Invoke(t, false, "isFrozen", accHash)

	t.Run("requires owner witness", func(t *testing.T) {
		cAcc := c.WithSigners(acc)
		cAcc.InvokeFail(t, common.ErrOwnerWitnessFailed, "toggleFreeze", accHash)
	})

	t.Run("zero address", func(t *testing.T) {
		c.InvokeFail(t, "zero address", "toggleFreeze", util.Uint160{})
	})
}

func TestToken_FrozenTransfers(t *testing.T) {
	c := newTokenInvoker(t)

	from := c.NewAccount(t)
	to := c.NewAccount(t)
	spender := c.NewAccount(t)
	fromHash := from.ScriptHash()
	toHash := to.ScriptHash()
	spenderHash := spender.ScriptHash()

	c.Invoke(t, stackitem.Null{}, "mint", fromHash, 10_000)

	cFrom := c.WithSigners(from)
	cFrom.Invoke(t, stackitem.Null{}, "approve", fromHash, spenderHash, 10_000)

	c.Invoke(t, stackitem.Null{}, "toggleFreeze", fromHash)

	cFrom.InvokeFail(t, "frozen address", "transfer", fromHash, toHash, 100, nil)
	require.EqualValues(t, 10_000, balanceOf(t, c, fromHash))

	cSpender := c.WithSigners(spender)
	cSpender.InvokeFail(t, "frozen address",
		"transferFrom", spenderHash, fromHash, toHash, 100, nil)

	t.Run("frozen receiver", func(t *testing.T) {
		c.Invoke(t, stackitem.Null{}, "toggleFreeze", fromHash)
		c.Invoke(t, stackitem.Null{}, "toggleFreeze", toHash)

		cFrom.InvokeFail(t, "frozen address", "transfer", fromHash, toHash, 100, nil)
	})

	t.Run("frozen spender may still operate", func(t *testing.T) {
		// Only the transfer parties are checked, the intermediary holds
		// none of the moved value.
		c.Invoke(t, stackitem.Null{}, "toggleFreeze", toHash)
		c.Invoke(t, stackitem.Null{}, "toggleFreeze", spenderHash)

		cSpender.Invoke(t, true, "transferFrom", spenderHash, fromHash, toHash, 100, nil)
		require.EqualValues(t, 100, balanceOf(t, c, toHash))
	})
}

func TestToken_IterateFrozen(t *testing.T) {
	c := newTokenInvoker(t)

	s, err := c.TestInvoke(t, "iterateFrozen")
	require.NoError(t, err)
	iter, ok := s.Pop().Value().(*istorage.Iterator)
	require.True(t, ok)
	require.Empty(t, iteratorToArray(iter))

	acc1 := c.NewAccount(t).ScriptHash()
	acc2 := c.NewAccount(t).ScriptHash()
	c.Invoke(t, stackitem.Null{}, "toggleFreeze", acc1)
	c.Invoke(t, stackitem.Null{}, "toggleFreeze", acc2)

	s, err = c.TestInvoke(t, "iterateFrozen")
	require.NoError(t, err)
	iter, ok = s.Pop().Value().(*istorage.Iterator)
	require.True(t, ok)

	items := iteratorToArray(iter)
	require.Equal(t, 2, len(items))

	frozen := make(map[util.Uint160]bool)
	for i := range items {
		bs, err := items[i].TryBytes()
		require.NoError(t, err)
		h, err := util.Uint160DecodeBytesBE(bs)
		require.NoError(t, err)
		frozen[h] = true
	}
	require.True(t, frozen[acc1])
	require.True(t, frozen[acc2])
}

func TestToken_WipeFrozenAddress(t *testing.T) {
	c := newTokenInvoker(t)

	acc := c.NewAccount(t)
	accHash := acc.ScriptHash()

	c.Invoke(t, stackitem.Null{}, "mint", accHash, 1_000)

	t.Run("not frozen", func(t *testing.T) {
		c.InvokeFail(t, "address is not frozen", "wipeFrozenAddress", accHash)
	})

	c.Invoke(t, stackitem.Null{}, "toggleFreeze", accHash)

	h := c.Invoke(t, stackitem.Null{}, "wipeFrozenAddress", accHash)
	aer := c.CheckHalt(t, h)
	require.Equal(t, 2, len(aer.Events))
	require.Equal(t, "Transfer", aer.Events[0].Name)
	require.Equal(t, stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(accHash.BytesBE()),
		stackitem.Null{},
		stackitem.Make(1_000),
	}), aer.Events[0].Item)
	require.Equal(t, "FrozenAddressWiped", aer.Events[1].Name)
	require.Equal(t, stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(accHash.BytesBE()),
	}), aer.Events[1].Item)

	require.EqualValues(t, 0, balanceOf(t, c, accHash))
	require.EqualValues(t, 0, totalSupply(t, c))

	// The account stays frozen, only the balance is gone.
	c.Invoke(t, true, "isFrozen", accHash)

	t.Run("requires owner witness", func(t *testing.T) {
		cAcc := c.WithSigners(acc)
		cAcc.InvokeFail(t, common.ErrOwnerWitnessFailed, "wipeFrozenAddress", accHash)
	})
}

func TestToken_Update(t *testing.T) {
	c := newTokenInvoker(t)

	acc := c.NewAccount(t)
	cAcc := c.WithSigners(acc)
	cAcc.InvokeFail(t, common.ErrOwnerWitnessFailed, "update", []byte{}, []byte{}, nil)
}
