// Package restclient provides the resty-based HTTP client shared by the
// metadata lookup services: bounded timeouts, rate-limit aware retries with
// attempt*wait backoff, and sentinel-marked errors.
package restclient
