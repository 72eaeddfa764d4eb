// Package registry loads the make registry: the JSON object that maps a
// vehicle make name to the search site's make identifier. The registry is
// read once and never mutated; iteration follows the order of the file.
package registry
