// Package loader builds cache factories backed by files under a root
// directory, and watches that directory so changed files are rebuilt.
//
// Keys are slash-separated paths relative to the root, e.g.
// "textures/brick.png". Keys that would escape the root are rejected.
package loader
