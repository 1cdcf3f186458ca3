// Package core provides the internal implementation of the opool object
// pooling library.
//
// The primary types are:
//   - [Pool]: the composite pool orchestrator, combining an idle buffer, an
//     admission policy, and a tracker behind one mutex.
//   - [idleBuffer]: the idle-storage strategy (FIFO/LIFO/Null, optionally
//     soft-referenced), including the max-idle cap and the idle-timeout /
//     revalidation sweep.
//   - [admission]: the creation/admission strategy (grow-or-fail, with
//     optional capacity waiting).
//   - [tracker]: the active-resource tracking strategy (Null/Counting/
//     Reference/Debug).
//   - [KeyedPool]: a map of per-key [Pool] instances sharing one
//     [EvictionScheduler] and one key-aware factory.
//   - [Config]: a validated, immutable configuration record assembled by
//     [Build].
package core
