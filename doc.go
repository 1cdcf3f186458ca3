// Package opool provides a generic, composable object pool.
//
// A [Pool] lends resources of any type R, constructed and torn down by a
// caller-supplied [ResourceFactory]. Its behavior is assembled from four
// independently configurable strategies:
//   - idle storage order (FIFO, LIFO, or none)
//   - what happens when the idle buffer is empty (create a new resource,
//     or fail)
//   - what happens at the active-resource limit (fail, or wait)
//   - how actively loaned-out resources are tracked, including optional
//     detection of resources a caller forgot to return
//
// [KeyedPool] multiplexes many independent pools, one per key, behind a
// single factory and configuration.
//
// Construct a Pool with [New] and functional [Option] values, or build a
// [KeyedPool] with [NewKeyed].
package opool
