package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// wrapper over the Neo RPC client providing blockchain services needed for
// the current command.
type remoteBlockchain struct {
	rpc     *rpcclient.Client
	invoker *invoker.Invoker

	currentBlock uint32
}

// newRemoteBlockchain dials Neo RPC server and returns remoteBlockchain based
// on the opened connection. Connection and all requests are done within 15s
// timeout.
func newRemoteBlockchain(blockChainRPCEndpoint string) (*remoteBlockchain, error) {
	c, err := rpcclient.New(context.Background(), blockChainRPCEndpoint, rpcclient.Options{
		DialTimeout:    15 * time.Second,
		RequestTimeout: 15 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	if err = c.Init(); err != nil {
		return nil, fmt.Errorf("RPC client init: %w", err)
	}

	nLatestBlock, err := c.GetBlockCount()
	if err != nil {
		return nil, fmt.Errorf("get number of the latest block: %w", err)
	}

	return &remoteBlockchain{
		rpc:          c,
		invoker:      invoker.New(c, nil),
		currentBlock: nLatestBlock,
	}, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}

// traverseIterator collects all items of the server-side iterator session. The
// session is terminated before return. On servers with sessions disabled the
// caller is expected to fall back to an expanded call.
func (x *remoteBlockchain) traverseIterator(sessionID uuid.UUID, iter *result.Iterator) ([]stackitem.Item, error) {
	const batchSize = 100

	var items []stackitem.Item

	for {
		batch, err := x.invoker.TraverseIterator(sessionID, iter, batchSize)
		if err != nil {
			return nil, fmt.Errorf("traverse iterator session: %w", err)
		}

		items = append(items, batch...)

		if len(batch) < batchSize {
			break
		}
	}

	_ = x.invoker.TerminateSession(sessionID)

	return items, nil
}

// parseContractHash accepts the token contract reference in either Neo
// address or little-endian hex hash form.
func parseContractHash(s string) (util.Uint160, error) {
	if h, err := address.StringToUint160(s); err == nil {
		return h, nil
	}

	h, err := util.Uint160DecodeStringLE(s)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("decode contract hash '%s': %w", s, err)
	}

	return h, nil
}
