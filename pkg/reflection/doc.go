// Package reflection coordinates weekly reflection generation.
//
// The Coordinator decides, per user and week, whether the expensive
// text-generation call should run at all: an existing reflection for the week
// short-circuits to a cache hit, a cooldown and a monthly budget bound spend,
// and an empty week is refused outright. When the call does run, the result
// is persisted with an insert-if-absent write; a uniqueness conflict there
// means a concurrent run won the race and is resolved by re-reading the
// stored row.
//
// The coordinator holds no locks. Any of its read steps can be duplicated by
// a concurrent twin in another process; correctness rests entirely on the
// store's uniqueness constraint at the final write.
package reflection
