// Package factory builds values for tests.
package factory

import (
	"go.lsp.dev/jsonrpc2"
)

// JSONRPCCall is a user-defined factory for a JSON-RPC call containing the specified id, method and parameters.
func JSONRPCCall(id int32, method string, params interface{}) *jsonrpc2.Call {
	call, _ := jsonrpc2.NewCall(jsonrpc2.NewNumberID(id), method, params)
	return call
}
