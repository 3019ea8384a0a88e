// Package auth turns token cookies into authorization decisions for library-api.
//
// # Session Resolution
//
// A Resolver verifies a token with the token package and loads the user it
// names. ResolveAccess accepts only access tokens and ResolveRefresh only
// refresh tokens. The resulting Session carries the user, the is_admin claim
// and the verified claims. The role is taken from the token, so a role change
// reaches callers when their access token is next re-issued.
//
// # Gate
//
// The Gate decides per request. Two call shapes share one resolution:
//
//	d := gate.Authorize(ctx, creds, requireAdmin)
//
//	v := gate.Validate(ctx, creds)
//	d := v.Check(requireAdmin)
//	user, ok := v.User()
//
// Outcomes:
//
//   - Authorized: valid access token, user exists, role sufficient
//   - NeedsRefresh: access token missing or expired
//   - Forbidden: valid session without the admin role on an admin route
//   - Unauthorized: malformed, tampered or wrong-type token, or unknown user
//   - Failed: the user store could not be queried
//
// Only NeedsRefresh is recoverable. Tampering and wrong-type tokens are logged
// at WARN with event=token_tampering; token values are never logged.
//
// # HTTP
//
// Middleware(requireAdmin) applies the gate. NeedsRefresh becomes a 307 to
//
//	/auth/refresh?redirected_from=<original request URI>
//
// RefreshHandler serves that endpoint for any method. It reads the
// refresh_token cookie, re-resolves the user, sets a fresh pair and either
// redirects back to a local redirected_from path or answers with a plain
// confirmation. StartSession and EndSession set and clear both cookies for
// login, registration and logout.
//
// # Cookies
//
// access_token and refresh_token are HttpOnly, SameSite=Lax, Path=/ and expire
// with their tokens. Secure follows auth.secure_cookies.
package auth
