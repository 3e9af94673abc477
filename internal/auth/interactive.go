// Package auth builds interactive-authentication payloads for privileged
// operations that require a fresh proof of identity (device deletion, for
// example), beyond the session's access token.
package auth

// Interactive holds the inputs for one interactive-auth round. It is built
// per request and never persisted. Session carries the continuation token
// from a previous 401 response, if the server started a multi-stage flow.
type Interactive struct {
	User     string
	Password string
	Session  string
}

// AuthData produces the password-stage auth dictionary. The username appears
// twice: once inside the structured identifier and once as a bare top-level
// field, because some servers only read the latter
// (https://github.com/matrix-org/synapse/issues/5665).
func (i Interactive) AuthData() map[string]any {
	data := map[string]any{
		"type": "m.login.password",
		"identifier": map[string]any{
			"type": "m.id.user",
			"user": i.User,
		},
		"password": i.Password,
		"user":     i.User,
	}

	if i.Session != "" {
		data["session"] = i.Session
	}

	return data
}
