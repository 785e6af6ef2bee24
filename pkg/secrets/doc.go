// Package secrets resolves ${secret:name} references in source credentials.
//
// A Resolver tries its providers in order and caches hits for a bounded
// time. Two providers are available:
//
//   - EnvProvider reads PREFIX + upper-cased name, with hyphens mapped to
//     underscores, so "backend-token" becomes CONVERTER_SECRET_BACKEND_TOKEN.
//   - FileProvider reads one file per secret from a directory. Files must
//     be regular files with mode 0600 or 0400; surrounding whitespace is
//     trimmed.
//
// Secret values never appear in logs. Names are logged in redacted form.
package secrets
