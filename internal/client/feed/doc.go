// Package feed keeps a locally cached, paginated list of events consistent
// across optimistic local mutations, their server settlement and live push
// notifications.
//
// Store holds pages per filter fingerprint and swaps its backing structure
// atomically on every write. Coordinator runs create, update and delete with
// snapshot and rollback. Listener merges push notifications into every
// subscribed fingerprint, consulting Pending so an update notification never
// clobbers an in-flight local update. Controller composes them for a view.
package feed
