// Package history persists the ledger of completed playlist conversions.
//
// The ledger is a JSON array on disk, newest entry first, capped at
// MaxEntries. An entry is written only after a feed has been published, so
// the file doubles as the list of live podcasts the operator has created.
package history
