// Package catalog caches pattern catalogs per signal family.
//
// Loads for the same family are coalesced so concurrent family entries
// issue a single request. Successful catalogs may be reused for a short
// TTL; failures are never cached, so selecting the family again retries.
// Reset drops everything and makes in-flight loads unable to repopulate
// the cache.
package catalog
