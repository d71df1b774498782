package token

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"

	"github.com/meridianmint/stablecoin-contract/common"
	"github.com/meridianmint/stablecoin-contract/contracts/token/tokenconst"
)

type (
	// Token holds all token info.
	Token struct {
		// Ticker symbol
		Symbol string
		// Amount of decimals
		Decimals int
		// Storage key for circulation value
		CirculationKey string
	}

	// Account structure stores state of each token holder.
	Account struct {
		// Active balance
		Balance int
	}
)

const (
	symbol      = "MUSD"
	decimals    = 8
	circulation = "Circulation"

	accPrefix       = 'a'
	allowancePrefix = 'l'
	frozenPrefix    = 'f'

	ownerKey         = 'o'
	feeControllerKey = 'c'
	feeRecipientKey  = 'r'
	feeRateKey       = 'b'
)

var token Token

func createToken() Token {
	return Token{
		Symbol:         symbol,
		Decimals:       decimals,
		CirculationKey: circulation,
	}
}

func init() {
	token = createToken()
}

// nolint:unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		owner interop.Hash160
	})

	if len(args.owner) != interop.Hash160Len {
		panic("incorrect length of owner script hash")
	}

	// Deployer holds all roles and receives fees until the roles are handed
	// over explicitly. Fee collection starts disabled.
	storage.Put(ctx, ownerKey, args.owner)
	storage.Put(ctx, feeControllerKey, args.owner)
	storage.Put(ctx, feeRecipientKey, args.owner)
	storage.Put(ctx, feeRateKey, 0)

	runtime.Log("token contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the contract owner.
func Update(nefFile, manifest []byte, data any) {
	ctx := storage.GetContext()
	common.CheckOwnerWitness(getRoleAddress(ctx, ownerKey))

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("token contract updated")
}

// Symbol is a NEP-17 standard method that returns the token symbol.
func Symbol() string {
	return token.Symbol
}

// Decimals is a NEP-17 standard method that returns precision of token
// balances.
func Decimals() int {
	return token.Decimals
}

// TotalSupply is a NEP-17 standard method that returns the total amount of
// tokens in circulation.
func TotalSupply() int {
	ctx := storage.GetReadOnlyContext()
	return token.getSupply(ctx)
}

// BalanceOf is a NEP-17 standard method that returns the token balance of the
// specified account.
func BalanceOf(account interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return token.balanceOf(ctx, account)
}

// Transfer is a NEP-17 standard method that transfers tokens from one account
// to another. It can be invoked only by the account owner.
//
// A proportional part of the amount set by the current fee rate is redirected
// to the fee recipient, the rest is credited to the receiver. Transfer panics
// if either party is frozen. It produces a Transfer notification for every
// balance movement and a FeeCollected notification when the fee part is
// non-zero.
func Transfer(from, to interop.Hash160, amount int, data any) bool {
	ctx := storage.GetContext()

	if len(to) != interop.Hash160Len || !isUsableAddress(from) {
		runtime.Log("bad script hashes")
		return false
	}

	return token.transferWithFee(ctx, from, to, amount)
}

// TransferFrom transfers tokens between two accounts on behalf of a third
// party previously authorized via Approve. It can be invoked only by the
// spender and consumes the spender's allowance from the debited account.
//
// Fee and freeze semantics match Transfer. Only the debited and the credited
// accounts are checked against the frozen set, the spender itself is not:
// it moves value between the parties but holds none of it.
func TransferFrom(spender, from, to interop.Hash160, amount int, data any) bool {
	ctx := storage.GetContext()

	if len(from) != interop.Hash160Len || !isUsableAddress(spender) {
		runtime.Log("bad script hashes")
		return false
	}
	if len(to) != interop.Hash160Len || isNullAddress(to) {
		panic("zero address")
	}

	if token.balanceOf(ctx, from) < amount {
		runtime.Log("insufficient balance")
		return false
	}

	token.spendAllowance(ctx, from, spender, amount)

	return token.transferWithFee(ctx, from, to, amount)
}

// Approve allows the spender to transfer up to the given amount from the
// owner's account via TransferFrom. It can be invoked only by the account
// owner and overwrites any previous allowance for this spender.
//
// It produces an Approval notification.
func Approve(owner, spender interop.Hash160, amount int) {
	ctx := storage.GetContext()

	common.CheckWitness(owner)
	if len(spender) != interop.Hash160Len || isNullAddress(spender) {
		panic("zero address")
	}
	if amount < 0 {
		panic("negative amount")
	}

	setAllowance(ctx, owner, spender, amount)
	runtime.Notify("Approval", owner, spender, amount)
}

// Allowance returns the amount the spender is still allowed to transfer from
// the owner's account.
func Allowance(owner, spender interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return getAllowance(ctx, owner, spender)
}

// GetFeeFor returns the fee that would be charged for a transfer of the given
// amount under the current fee rate. The remainder of the amount is what the
// receiver would be credited.
func GetFeeFor(amount int) int {
	if amount < 0 {
		panic("negative amount")
	}
	ctx := storage.GetReadOnlyContext()
	return feeFor(ctx, amount)
}

// FeeRate returns the current transfer fee rate in parts per
// [tokenconst.FeeParts].
func FeeRate() int {
	ctx := storage.GetReadOnlyContext()
	return getFeeRate(ctx)
}

// FeeRecipient returns the account all collected fees are credited to.
func FeeRecipient() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return getRoleAddress(ctx, feeRecipientKey)
}

// FeeController returns the account allowed to change the fee rate and the
// fee recipient.
func FeeController() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return getRoleAddress(ctx, feeControllerKey)
}

// Owner returns the contract owner account.
func Owner() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return getRoleAddress(ctx, ownerKey)
}

// SetFeeRate sets the transfer fee rate in parts per [tokenconst.FeeParts].
// It can be invoked only by the fee controller. Rate equal to zero disables
// fee collection.
//
// It produces a FeeRateSet notification.
func SetFeeRate(rate int) {
	ctx := storage.GetContext()
	common.CheckFeeControllerWitness(getRoleAddress(ctx, feeControllerKey))

	if rate < 0 || rate > tokenconst.FeeParts {
		panic("invalid fee rate")
	}

	old := getFeeRate(ctx)
	storage.Put(ctx, feeRateKey, rate)

	runtime.Log("fee rate updated")
	runtime.Notify("FeeRateSet", old, rate)
}

// SetFeeRecipient sets the account collected fees are credited to. It can be
// invoked only by the fee controller.
//
// It produces a FeeRecipientSet notification.
func SetFeeRecipient(recipient interop.Hash160) {
	ctx := storage.GetContext()
	common.CheckFeeControllerWitness(getRoleAddress(ctx, feeControllerKey))

	if len(recipient) != interop.Hash160Len || isNullAddress(recipient) {
		panic("zero address")
	}

	old := getRoleAddress(ctx, feeRecipientKey)
	storage.Put(ctx, feeRecipientKey, recipient)

	runtime.Log("fee recipient updated")
	runtime.Notify("FeeRecipientSet", old, recipient)
}

// SetFeeController hands the fee controller role over to another account. It
// can be invoked by the current fee controller or by the contract owner.
//
// It produces a FeeControllerSet notification.
func SetFeeController(controller interop.Hash160) {
	ctx := storage.GetContext()

	old := getRoleAddress(ctx, feeControllerKey)
	if !runtime.CheckWitness(old) && !runtime.CheckWitness(getRoleAddress(ctx, ownerKey)) {
		panic("fee controller or owner witness check failed")
	}

	if len(controller) != interop.Hash160Len || isNullAddress(controller) {
		panic("zero address")
	}

	storage.Put(ctx, feeControllerKey, controller)

	runtime.Log("fee controller updated")
	runtime.Notify("FeeControllerSet", old, controller)
}

// ToggleFreeze inverts the frozen status of the account. A frozen account can
// neither send nor receive tokens. It can be invoked only by the contract
// owner. This is a toggle, not a set operation: invoking it on an already
// frozen account unfreezes it.
//
// It produces an AddressFrozen or an AddressUnfrozen notification depending
// on the transition taken.
func ToggleFreeze(addr interop.Hash160) {
	ctx := storage.GetContext()
	common.CheckOwnerWitness(getRoleAddress(ctx, ownerKey))

	if len(addr) != interop.Hash160Len || isNullAddress(addr) {
		panic("zero address")
	}

	key := append([]byte{frozenPrefix}, addr...)
	if storage.Get(ctx, key) == nil {
		storage.Put(ctx, key, true)
		runtime.Log("address frozen")
		runtime.Notify("AddressFrozen", addr)
	} else {
		storage.Delete(ctx, key)
		runtime.Log("address unfrozen")
		runtime.Notify("AddressUnfrozen", addr)
	}
}

// IsFrozen returns true if the account is currently frozen.
func IsFrozen(addr interop.Hash160) bool {
	ctx := storage.GetReadOnlyContext()
	return isFrozen(ctx, addr)
}

// IterateFrozen returns an iterator over all currently frozen accounts.
func IterateFrozen() iterator.Iterator {
	return storage.Find(storage.GetReadOnlyContext(), []byte{frozenPrefix},
		storage.KeysOnly|storage.RemovePrefix)
}

// WipeFrozenAddress burns the entire balance of a frozen account and shrinks
// total supply accordingly. It can be invoked only by the contract owner and
// panics if the account is not frozen. The wipe is an administrative seizure:
// the burn authorization is satisfied by granting the owner an allowance for
// the full balance, which the burn then consumes.
//
// It produces Transfer and FrozenAddressWiped notifications.
func WipeFrozenAddress(addr interop.Hash160) {
	ctx := storage.GetContext()
	owner := getRoleAddress(ctx, ownerKey)
	common.CheckOwnerWitness(owner)

	if !isFrozen(ctx, addr) {
		panic("address is not frozen")
	}

	balance := token.balanceOf(ctx, addr)
	setAllowance(ctx, addr, owner, balance)
	token.burnFrom(ctx, addr, owner, balance)

	runtime.Log("frozen address wiped")
	runtime.Notify("FrozenAddressWiped", addr)
}

// Mint issues tokens to the given account and increases total supply. It can
// be invoked only by the contract owner.
//
// It produces a Transfer notification with null sender.
func Mint(to interop.Hash160, amount int) {
	ctx := storage.GetContext()
	common.CheckOwnerWitness(getRoleAddress(ctx, ownerKey))

	if len(to) != interop.Hash160Len || isNullAddress(to) {
		panic("zero address")
	}
	if amount < 0 {
		panic("negative amount")
	}

	token.move(ctx, nil, to, amount)

	supply := token.getSupply(ctx)
	storage.Put(ctx, token.CirculationKey, supply+amount)
	runtime.Log("tokens minted")
}

// Burn destroys tokens from the given account and decreases total supply. It
// can be invoked only by the contract owner and consumes the owner's
// allowance from the account being debited.
//
// It produces a Transfer notification with null receiver.
func Burn(from interop.Hash160, amount int) {
	ctx := storage.GetContext()
	owner := getRoleAddress(ctx, ownerKey)
	common.CheckOwnerWitness(owner)

	if amount < 0 {
		panic("negative amount")
	}

	token.burnFrom(ctx, from, owner, amount)
	runtime.Log("tokens burned")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// getSupply gets the token totalSupply value from VM storage.
func (t Token) getSupply(ctx storage.Context) int {
	supply := storage.Get(ctx, t.CirculationKey)
	if supply != nil {
		return supply.(int)
	}

	return 0
}

// balanceOf gets the token balance of a specific address.
func (t Token) balanceOf(ctx storage.Context, holder interop.Hash160) int {
	acc := getAccount(ctx, holder)

	return acc.Balance
}

// transferWithFee splits the amount into principal and fee parts and performs
// both movements, or neither. Both parties must be unfrozen and the sender
// balance must cover the full amount; the upfront check makes the two
// movements unable to fail halfway.
func (t Token) transferWithFee(ctx storage.Context, from, to interop.Hash160, amount int) bool {
	if amount < 0 {
		panic("negative amount")
	}

	if isFrozen(ctx, from) || isFrozen(ctx, to) {
		panic("frozen address")
	}

	fee := feeFor(ctx, amount)
	if fee > amount {
		panic("fee exceeds amount")
	}

	if t.balanceOf(ctx, from) < amount {
		runtime.Log("insufficient balance")
		return false
	}

	t.move(ctx, from, to, amount-fee)

	if fee != 0 {
		recipient := getRoleAddress(ctx, feeRecipientKey)
		t.move(ctx, from, recipient, fee)
		runtime.Notify("FeeCollected", from, recipient, fee)
	}

	return true
}

// move shifts the amount between two accounts. Nil from mints, nil to burns,
// the caller maintains the circulation record in both cases.
func (t Token) move(ctx storage.Context, from, to interop.Hash160, amount int) {
	if len(from) == interop.Hash160Len {
		var fromKey = append([]byte{accPrefix}, from...)

		acc := getAccount(ctx, from)
		if acc.Balance < amount {
			panic("insufficient balance")
		}

		if acc.Balance == amount {
			storage.Delete(ctx, fromKey)
		} else {
			acc.Balance -= amount
			common.SetSerialized(ctx, fromKey, acc)
		}
	}

	if len(to) == interop.Hash160Len {
		var toKey = append([]byte{accPrefix}, to...)

		accTo := getAccount(ctx, to)
		accTo.Balance += amount
		common.SetSerialized(ctx, toKey, accTo)
	}

	runtime.Notify("Transfer", from, to, amount)
}

// burnFrom destroys the amount from the account using the spender's
// allowance and shrinks the circulation record.
func (t Token) burnFrom(ctx storage.Context, from, spender interop.Hash160, amount int) {
	t.spendAllowance(ctx, from, spender, amount)
	t.move(ctx, from, nil, amount)

	supply := t.getSupply(ctx)
	if supply < amount {
		panic("negative supply after burn")
	}
	storage.Put(ctx, t.CirculationKey, supply-amount)
}

// spendAllowance decreases the spender's allowance from the owner account by
// the amount, panicking if the allowance does not cover it.
func (t Token) spendAllowance(ctx storage.Context, owner, spender interop.Hash160, amount int) {
	a := getAllowance(ctx, owner, spender)
	if a < amount {
		panic("insufficient allowance")
	}
	setAllowance(ctx, owner, spender, a-amount)
}

func feeFor(ctx storage.Context, amount int) int {
	rate := getFeeRate(ctx)
	if rate == 0 {
		return 0
	}

	// NeoVM integers are arbitrary-width, the multiply cannot truncate
	// before the divide.
	return amount * rate / tokenconst.FeeParts
}

func getFeeRate(ctx storage.Context) int {
	rate := storage.Get(ctx, feeRateKey)
	if rate != nil {
		return rate.(int)
	}

	return 0
}

func getRoleAddress(ctx storage.Context, key byte) interop.Hash160 {
	return storage.Get(ctx, key).(interop.Hash160)
}

func isFrozen(ctx storage.Context, addr interop.Hash160) bool {
	return storage.Get(ctx, append([]byte{frozenPrefix}, addr...)) != nil
}

func allowanceKey(owner, spender interop.Hash160) []byte {
	key := append([]byte{allowancePrefix}, owner...)
	return append(key, spender...)
}

func getAllowance(ctx storage.Context, owner, spender interop.Hash160) int {
	a := storage.Get(ctx, allowanceKey(owner, spender))
	if a != nil {
		return a.(int)
	}

	return 0
}

func setAllowance(ctx storage.Context, owner, spender interop.Hash160, amount int) {
	key := allowanceKey(owner, spender)
	if amount == 0 {
		storage.Delete(ctx, key)
	} else {
		storage.Put(ctx, key, amount)
	}
}

func getAccount(ctx storage.Context, key interop.Hash160) Account {
	data := storage.Get(ctx, append([]byte{accPrefix}, key...))
	if data != nil {
		return std.Deserialize(data.([]byte)).(Account)
	}

	return Account{}
}

// isUsableAddress checks if the sender is either a correct NEO address or SC address.
func isUsableAddress(addr interop.Hash160) bool {
	if len(addr) == interop.Hash160Len {
		if runtime.CheckWitness(addr) {
			return true
		}

		// Check if a smart contract is calling script hash
		callingScriptHash := runtime.GetCallingScriptHash()
		if callingScriptHash.Equals(addr) {
			return true
		}
	}

	return false
}

func isNullAddress(addr interop.Hash160) bool {
	for i := 0; i < len(addr); i++ {
		if addr[i] != 0 {
			return false
		}
	}

	return true
}
