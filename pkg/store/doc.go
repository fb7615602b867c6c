// Package store provides a minimal hosting container for a composite reducer
// built by the core go-parts primitives.
//
// Responsibilities:
//   - Store owns the composite state object and is the only holder that
//     replaces it; the reducer itself never mutates state in place.
//   - Dispatch applies one action synchronously through the reducer and
//     notifies subscribers only when the state reference actually changed.
//   - Activity emission (pkg/activity) is optional and host-level; the core
//     parts package stays free of audit concerns.
//
// Data flow:
//
//	parts.NewReducer(...) -> store.New(...) -> Dispatch -> listeners / hooks
//
// The reducer contract is pure and single-threaded; the store serialises
// access with a mutex so it can be shared safely at the host boundary.
package store
