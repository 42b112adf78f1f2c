package node

import (
	"errors"

	"github.com/btcsuite/btcd/btcjson"
)

// isNotFound reports whether the node answered that the requested object does not exist.
// Unknown transactions and unknown blocks share the same code.
func isNotFound(err error) bool {
	var rpcErr *btcjson.RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == btcjson.ErrRPCNoTxInfo
}
