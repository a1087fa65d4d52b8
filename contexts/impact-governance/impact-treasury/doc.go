// Package impacttreasury keeps the shared treasury fed by failed wishes and
// drawn down by executed governance proposals.
//
// Credits are keyed by wish id and allocations by proposal id; both are
// written together with the account row so available funds never go
// negative.
package impacttreasury
