package utils

import "net/http"

// UserIDHeader carries the authenticated user id, injected by the auth
// gateway in front of this service. Auth mechanics live entirely in that
// layer; this server only needs to know who the current user is.
const UserIDHeader = "X-User-Id"

// CurrentUserID returns the authenticated user id for the request, or ""
// when there is no session.
func CurrentUserID(r *http.Request) string {
	return r.Header.Get(UserIDHeader)
}
