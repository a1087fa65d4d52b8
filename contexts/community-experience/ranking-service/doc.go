// Package rankingservice serves the supporter and creator leaderboard built
// from wish and pledge records.
package rankingservice
