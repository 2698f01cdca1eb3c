// Package integrations provides HTTP clients for the remote metadata APIs an
// installer talks to.
//
// # Overview
//
// Each subpackage wraps one API:
//
//   - [mojang]: the version manifest, version metadata, asset indexes and
//     the Java runtime catalogue published by Mojang
//   - [fabric]: the Fabric and Quilt loader metadata services
//
// All clients embed [Client], which handles:
//
//   - Caching: responses are stored in a [cache.Cache] for a configurable TTL
//   - Retries: temporary failures are retried with exponential backoff
//   - Error mapping: 404s become [ErrNotFound], other failures [ErrNetwork]
//
// Failures keep the underlying [session.Error] in their chain, so callers
// can still inspect the status or map the error to an error code.
//
// # Adding an API
//
//  1. Create a subpackage under integrations/
//  2. Define response structs matching the API schema
//  3. Embed [Client] created with [NewClient] and a distinct namespace
//
// [mojang]: github.com/matzehuels/mcinstall/pkg/integrations/mojang
// [fabric]: github.com/matzehuels/mcinstall/pkg/integrations/fabric
// [cache.Cache]: github.com/matzehuels/mcinstall/pkg/cache.Cache
// [session.Error]: github.com/matzehuels/mcinstall/pkg/session.Error
package integrations
