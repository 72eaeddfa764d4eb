// Package fetcher builds the make/model catalog by querying the auction
// site's model search endpoint once per make. Requests are strictly
// sequential; the first failure stops the loop, and RunAndPersist writes
// whatever was gathered before returning.
package fetcher
