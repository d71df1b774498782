// Dump prints full public state of the Meridian Stablecoin contract deployed
// on a particular Neo blockchain network: token parameters, fee policy, role
// assignments and the list of frozen accounts.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/meridianmint/stablecoin-contract/rpc/token"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

func main() {
	neoRPCEndpoint := flag.String("rpc", "", "Network address of the Neo RPC server")
	contractStr := flag.String("contract", "", "Token contract account (Neo address or LE hex hash)")

	flag.Parse()

	switch {
	case *neoRPCEndpoint == "":
		log.Fatal("missing Neo RPC endpoint")
	case *contractStr == "":
		log.Fatal("missing token contract account")
	}

	contractHash, err := parseContractHash(*contractStr)
	if err != nil {
		log.Fatal(err)
	}

	err = _dump(*neoRPCEndpoint, contractHash)
	if err != nil {
		log.Fatal(err)
	}
}

func _dump(neoBlockchainRPCEndpoint string, contractHash util.Uint160) error {
	b, err := newRemoteBlockchain(neoBlockchainRPCEndpoint)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}

	defer b.close()

	reader := token.NewReader(b.invoker, contractHash)

	sym, err := reader.Symbol()
	if err != nil {
		return fmt.Errorf("get token symbol: %w", err)
	}

	dec, err := reader.Decimals()
	if err != nil {
		return fmt.Errorf("get token decimals: %w", err)
	}

	supply, err := reader.TotalSupply()
	if err != nil {
		return fmt.Errorf("get total supply: %w", err)
	}

	ver, err := reader.Version()
	if err != nil {
		return fmt.Errorf("get contract version: %w", err)
	}

	v := ver.Int64()

	fmt.Printf("Contract:      %s\n", address.Uint160ToString(contractHash))
	fmt.Printf("Version:       %d.%d.%d\n", v/1_000_000, v/1_000%1_000, v%1_000)
	fmt.Printf("Block:         %d\n", b.currentBlock)
	fmt.Printf("Symbol:        %s\n", sym)
	fmt.Printf("Decimals:      %d\n", dec)
	fmt.Printf("Total supply:  %s\n", supply)

	if err = dumpFeePolicy(reader); err != nil {
		return err
	}

	return dumpFrozen(b, reader)
}

func dumpFeePolicy(reader *token.ContractReader) error {
	rate, err := reader.FeeRate()
	if err != nil {
		return fmt.Errorf("get fee rate: %w", err)
	}

	recipient, err := reader.FeeRecipient()
	if err != nil {
		return fmt.Errorf("get fee recipient: %w", err)
	}

	controller, err := reader.FeeController()
	if err != nil {
		return fmt.Errorf("get fee controller: %w", err)
	}

	owner, err := reader.Owner()
	if err != nil {
		return fmt.Errorf("get contract owner: %w", err)
	}

	fmt.Printf("Fee rate:      %s ppm\n", rate)
	fmt.Printf("Fee recipient: %s\n", address.Uint160ToString(recipient))
	fmt.Printf("Controller:    %s\n", address.Uint160ToString(controller))
	fmt.Printf("Owner:         %s\n", address.Uint160ToString(owner))

	return nil
}

func dumpFrozen(b *remoteBlockchain, reader *token.ContractReader) error {
	// Expanded call is limited, so try an iterator session first and fall
	// back only when the server has sessions disabled.
	const expandedLimit = 1024

	var items []stackitem.Item

	sessionID, iter, err := reader.IterateFrozen()
	if err == nil {
		items, err = b.traverseIterator(sessionID, &iter)
		if err != nil {
			return fmt.Errorf("collect frozen accounts: %w", err)
		}
	} else {
		items, err = reader.IterateFrozenExpanded(expandedLimit)
		if err != nil {
			return fmt.Errorf("list frozen accounts: %w", err)
		}
	}

	fmt.Printf("Frozen:        %d account(s)\n", len(items))

	for i := range items {
		bs, err := items[i].TryBytes()
		if err != nil {
			return fmt.Errorf("decode frozen account #%d: %w", i, err)
		}

		acc, err := util.Uint160DecodeBytesBE(bs)
		if err != nil {
			return fmt.Errorf("decode frozen account #%d hash: %w", i, err)
		}

		fmt.Printf("  %s\n", address.Uint160ToString(acc))
	}

	return nil
}
