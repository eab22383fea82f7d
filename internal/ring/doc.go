// Package ring implements a consistent hashing ring with virtual nodes.
// It maps keys to named servers, records the resulting key assignments,
// and rebalances only the assignments that move when servers join or leave.
package ring
