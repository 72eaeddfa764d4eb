// Package packager builds browser-extension release archives. Each target
// archive holds the source tree with the source directory itself stripped
// from entry names, every file named manifest.json left out, and the
// target's own manifest injected as manifest.json.
package packager
