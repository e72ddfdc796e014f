// Package app wires stores, services, and clients into the object graph the
// CLI runs on.
package app
