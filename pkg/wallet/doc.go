// Package wallet binds a signer to a provider to sign and submit
// transactions for one account.
//
//	w, err := wallet.FromMnemonic(mnemonic, 0, sign.DefaultAddressPrefix)
//	if err != nil {
//	    return err
//	}
//	w.Connect(provider.NewHTTPProvider("http://127.0.0.1:26657"))
//
//	signed, err := w.SignTransaction(ctx, unsigned, decodeMsgs, wallet.SignOptions{})
//	if err != nil {
//	    return err
//	}
//	hash, err := w.SendTransaction(ctx, signed, provider.BroadcastCommit)
package wallet
