// Package admission maps inbound requests onto rate-limit policy and decides
// whether they may proceed.
//
// The gate itself is stateless policy: it resolves a request's path against
// an ordered rule list, builds a composite key from the caller identity and
// the matched rule, and delegates counting to a ratelimit.Hitter. Rules are
// evaluated first-match-wins, so expensive routes must be listed before the
// unconditional catch-all; config validation enforces that ordering.
//
// The HTTP middleware in this package is the single choke point every API
// request passes through, independent of route.
package admission
