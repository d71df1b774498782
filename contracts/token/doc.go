/*
Package token implements a fee-charging, freezable stablecoin contract.

The contract is a NEP-17 compatible fungible token, so balances can be
tracked and controlled by N3 compatible network monitors and wallet
software. On top of the plain token it layers three policies that apply to
every balance-mutating call:

  - a proportional transfer fee (parts per million of the transfer amount,
    see tokenconst.FeeParts) redirected to a configurable fee recipient;
  - per-account freezing, which blocks a frozen account from sending and
    receiving tokens and allows the owner to burn its entire balance;
  - role-gated administration: the owner controls freezing, wiping and
    supply, the fee controller owns the fee policy.

All three roles and the fee recipient are initialized to the deploying
account and fee collection starts disabled (rate 0). The owner role has no
setter; the fee controller can be handed over by itself or by the owner.

# Contract notifications

Transfer notification. This is a NEP-17 standard notification produced for
every balance movement, including the fee leg of a transfer, minting (null
sender) and burning (null receiver).

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer

Approval notification, produced when an account authorizes a spender.

	Approval:
	  - name: owner
	    type: Hash160
	  - name: spender
	    type: Hash160
	  - name: amount
	    type: Integer

FeeCollected notification, produced once per transfer whose fee part is
non-zero. A transfer under fee rate 0 produces no FeeCollected notification
at all.

	FeeCollected:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer

Fee policy and role notifications, produced by the corresponding setters.

	FeeRateSet:
	  - name: old
	    type: Integer
	  - name: new
	    type: Integer

	FeeRecipientSet:
	  - name: old
	    type: Hash160
	  - name: new
	    type: Hash160

	FeeControllerSet:
	  - name: old
	    type: Hash160
	  - name: new
	    type: Hash160

Freeze registry notifications.

	AddressFrozen:
	  - name: addr
	    type: Hash160

	AddressUnfrozen:
	  - name: addr
	    type: Hash160

	FrozenAddressWiped:
	  - name: addr
	    type: Hash160

AssetProtectionRoleSet is declared for a future handoff of the freeze/wipe
authority but is not emitted by any method of the current contract.

	AssetProtectionRoleSet:
	  - name: old
	    type: Hash160
	  - name: new
	    type: Hash160
*/
package token

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'Circulation' -> int
   total amount of tokens in circulation
 - a<interop.Hash160> -> std.Serialize(Account)
   balance sheet of all token holders (here Account is a structure defined in current package)
 - l<owner interop.Hash160><spender interop.Hash160> -> int
   remaining allowance of the spender from the owner account
 - f<interop.Hash160> -> bool
   presence of the key marks the account as frozen
 - 'o' -> interop.Hash160
   contract owner
 - 'c' -> interop.Hash160
   fee controller
 - 'r' -> interop.Hash160
   fee recipient
 - 'b' -> int
   transfer fee rate in parts per tokenconst.FeeParts

# Fee policy
Every transfer is split into a principal and a fee movement inside one
invocation, both are committed or none is.
*/
