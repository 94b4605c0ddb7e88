// Package provider is the chain facing API of the client: typed reads of
// node state, transaction broadcast and confirmation tracking.
//
// HTTPProvider and WSProvider implement Provider over the two transports of
// package rpc; both share one implementation of every operation.
//
//	p := provider.NewHTTPProvider("http://127.0.0.1:26657")
//	balance, err := p.GetBalance(ctx, "g1jg8mtutu9khhfwc4nxmuhcpftf0pajdhfvsqf5", "ugnot", 0)
//
// # Errors
//
// Transactions rejected by the node surface as *TM2Error. The error message
// is fixed per kind and the node's diagnostic text is kept in Log:
//
//	_, err := p.SendTransactionSync(ctx, encoded)
//	if errors.Is(err, provider.ErrInsufficientFunds) {
//	    var tmErr *provider.TM2Error
//	    errors.As(err, &tmErr)
//	    fmt.Println(tmErr.Log)
//	}
//
// # Confirmation
//
// WaitForTransaction polls for new blocks once per second and returns the
// decoded transaction as soon as a block containing it is scanned, or
// ErrTransactionFetchTimeout after 15 seconds by default.
package provider
