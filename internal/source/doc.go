// Package source resolves the configured issue scope into remote request
// targets.
//
// A scope is either a single project, a single group, the token owner's
// personal issues, or a custom comma-separated list mixing projects and
// groups ("P:123, G:45"). Resolution is deterministic: the same settings
// always produce the same ordered target list.
package source
