// Package secret resolves secret material referenced from sunspot
// configuration.
//
// Values go through strict environment expansion first (see
// ExpandEnvStrict) and then secret reference resolution:
//   - Full value:  secretref:env:REDIS_PASSWORD
//   - Inline use:  Bearer secretref:file:/run/secrets/token
//
// An inline reference runs to the next whitespace.
//
// Providers are looked up by the name after "secretref:". EnvProvider and
// FileProvider cover container deployments.
package secret
