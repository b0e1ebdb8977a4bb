// Package utils provides loose value conversion for rule files and the chat
// timestamp helpers shared by the ledger and the comparison sweep.
package utils
