// Package cache provides a TTL cache for fetched HTML pages, keyed by URL.
// It is consulted before and updated after every fetch so repeated scrapes
// within the TTL window never hit the network.
package cache
