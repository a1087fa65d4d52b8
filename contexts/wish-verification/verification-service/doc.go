// Package verificationservice implements wish verification and resolution
// inside the wish-verification context.
//
// The module owns the wish state machine (active, pending verification and the
// verified/failed/cancelled terminal states), pledge bookkeeping, proof
// validation, community voting and resolution. Resolution routes the impact
// share of a failed wish to the treasury through a port and triggers reward
// distribution for verified wishes. Mutual exclusion is delegated to
// conditional writes in the storage adapters.
package verificationservice
