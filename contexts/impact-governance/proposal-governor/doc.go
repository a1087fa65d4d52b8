// Package proposalgovernor runs the governance proposals that spend the
// impact treasury: creation, one ballot per voter, quorum resolution and
// single execution after the voting deadline.
package proposalgovernor
