// Package manifest reads browser-extension manifest files. It extracts the
// release version with a line-oriented match, validates platform manifests
// against an embedded JSON schema, and reports version drift between the
// manifests that make up one release.
package manifest
