// Package flix provides stateless session authentication for the flix
// movie watchlist and ratings API: bcrypt credential hashing, signed JWT
// issuance and validation, and the per-request interception that turns an
// inbound token cookie into a request-scoped security context.
//
// Session model:
//   - Sessions are self contained. A login mints an HS256 signed token with
//     {sub, iat, exp} claims, delivered as an HttpOnly cookie. No session
//     record is kept server side; every request is re-validated from the
//     token alone.
//   - Logout only instructs the client to drop the cookie. A token that was
//     already issued remains cryptographically valid until its natural
//     expiry; there is no revocation list. Deployments must size the token
//     TTL with that in mind.
//
// Request pipeline:
//   - The jwtware interceptor runs once per request, ahead of any handler
//     that consults identity. It never rejects a request: a missing,
//     malformed, expired, or otherwise invalid token leaves the request
//     anonymous and lets it proceed (fail open).
//   - RequireAuthenticated is the route-level policy that turns an anonymous
//     context into a 401. Every protected route must mount it explicitly,
//     after the interceptor in the middleware chain.
//
// Persistence of users, ratings, and watchlist items is plain Bun plumbing
// feeding the credential store the authenticator depends on.
package flix
