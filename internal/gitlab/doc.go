// Package gitlab is a thin typed wrapper over the GitLab REST API.
//
// Each operation is a single authenticated GET with no retries and no
// rate-limit awareness. Responses are decoded defensively at this
// boundary: a non-2xx status, a transport failure, and an undecodable
// body are distinct error kinds (see errors.go).
package gitlab
