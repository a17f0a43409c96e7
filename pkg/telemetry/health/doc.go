// Package health serves the relay's liveness, readiness and version
// endpoints.
//
// Liveness only reports that the process is up. Readiness runs every
// registered CheckFunc concurrently, each under its own timeout, and answers
// 503 when any of them fails. The relay registers a single "provider" check
// built with ProviderCheck.
package health
