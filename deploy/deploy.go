// Package deploy provides Meridian Stablecoin contract deployment routine.
package deploy

import (
	"context"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for the token contract deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to the
	// blockchain.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by its
	// address. GetContractStateByHash returns error with 'Unknown contract'
	// substring if the requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// TokenContractPrm groups deployment parameters of the token contract.
type TokenContractPrm struct {
	NEF      nef.File
	Manifest manifest.Manifest

	// Account to be set as contract owner, fee controller and fee recipient.
	Owner util.Uint160
}

// Prm groups all parameters of the token contract deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance the contract is deployed to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	LocalAccount *wallet.Account

	TokenContract TokenContractPrm
}

// Deploy makes the token contract deployed on the Neo network represented by
// the given Prm.Blockchain. The deployment transaction initializes all
// contract roles to Prm.TokenContract.Owner with fee collection disabled.
//
// Deploy is idempotent: if the contract is already on the chain, its address
// is returned without any transaction being sent. Contract code updates go
// through the contract's own 'update' method and are out of scope here.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	localActor, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	contractAddress := state.CreateContractHash(localActor.Sender(),
		prm.TokenContract.NEF.Checksum, prm.TokenContract.Manifest.Name)

	alreadyDeployed, err := isContractDeployed(prm.Blockchain, contractAddress)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("check contract state on the chain: %w", err)
	}

	if alreadyDeployed {
		prm.Logger.Info("token contract is already on the chain, nothing to do",
			zap.Stringer("address", contractAddress))
		return contractAddress, nil
	}

	prm.Logger.Info("deploying token contract...",
		zap.Stringer("address", contractAddress),
		zap.Stringer("owner", prm.TokenContract.Owner))

	mgmt := management.New(localActor)

	txHash, vub, err := mgmt.Deploy(&prm.TokenContract.NEF, &prm.TokenContract.Manifest,
		[]any{prm.TokenContract.Owner})
	if err != nil {
		return util.Uint160{}, fmt.Errorf("send contract deployment transaction: %w", err)
	}

	prm.Logger.Info("deployment transaction sent, waiting for it to be persisted...",
		zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	aer, err := localActor.Wait(txHash, vub, nil)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("wait for deployment transaction: %w", err)
	}
	if aer.VMState != vmstate.Halt {
		return util.Uint160{}, fmt.Errorf("deployment transaction failed: %s", aer.FaultException)
	}

	prm.Logger.Info("token contract successfully deployed",
		zap.Stringer("address", contractAddress))

	return contractAddress, nil
}

func isContractDeployed(b Blockchain, addr util.Uint160) (bool, error) {
	_, err := b.GetContractStateByHash(addr)
	if err == nil {
		return true, nil
	}
	if isErrContractNotFound(err) {
		return false, nil
	}
	return false, err
}

// isErrContractNotFound checks if the error is a 'Unknown contract' RPC error.
func isErrContractNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Unknown contract")
}
