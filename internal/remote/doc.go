// Package remote is the client side of the backend boundary: identity
// lookup, registration, profile updates, event submission and event
// history. Backend is the interface the session store depends on; Client
// implements it over HTTP/JSON.
//
// Wire types mirror the backend's document shapes (camelCase keys, "_id"
// identifiers, "itemName" for event names) and are converted to and from
// model types here so nothing else sees them.
package remote
