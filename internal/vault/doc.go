// Package vault persists issue notes as markdown files in a single
// output directory.
//
// Files are the system of record: a note is `<sanitized title>.md`, UTF-8,
// with an optional leading YAML frontmatter block delimited by "---"
// lines. Frontmatter is always re-derivable from content; it is never
// stored independently.
package vault
