// Package sign provides chain-agnostic signing interfaces and their
// secp256k1 implementation for Tendermint2 accounts.
//
// The primary interfaces are:
//
//   - Signer: signs transaction sign bytes
//   - PublicKey: exposes the key bytes and the derived address
//   - Address: a printable, comparable account address
//   - Verifier: optional signature verification on a public key
//
// Private key material never leaves a Signer.
//
// Usage
//
//	signer, err := sign.NewSignerFromMnemonic(mnemonic, 0, sign.DefaultAddressPrefix)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Address:", signer.PublicKey().Address()) // g1...
//
//	// Sign hashes the payload with SHA-256 before signing.
//	signature, err := signer.Sign(signBytes)
package sign
