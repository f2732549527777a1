// Package server composes the Prescripto HTTP surface: the middleware chain,
// the CORS allow-list, the admin, doctor and user route collaborators mounted
// under /api, and the liveness and readiness endpoints. It also owns the
// listener lifecycle used by the binary and the tests.
package server
