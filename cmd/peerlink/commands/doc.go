// Package commands defines the peerlink CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init         Create the local identity (no-op if one exists)
//   - fingerprint  Print the short ID and full fingerprint
//   - export       Print the private key seed for transfer to another device
//   - import       Install an identity from an exported seed
//   - regenerate   Replace the identity with a fresh keypair
//   - chat         Join a room and exchange encrypted messages with peers
//
// # Implementation
//
// The root command loads configuration and builds a dependency graph
// (identity store, relay client, signaling channel) before any subcommand
// runs, so handlers share one app context.
package commands
