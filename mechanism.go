package ircsasl

import (
	"fmt"

	"github.com/emersion/go-sasl"
)

// newSASLClient builds the SASL client for the configured mechanism.
//
// For PLAIN the authorization identity is explicitly set to the username:
// acting on behalf of a separate identity is not supported. EXTERNAL leaves
// the identity blank, requesting the identity bound to the TLS credentials.
func newSASLClient(mech Mechanism, username, password string) (sasl.Client, error) {
	switch mech {
	case MechanismPlain:
		if username == "" || password == "" {
			return nil, fmt.Errorf("ircsasl: the PLAIN mechanism requires a username and a password")
		}
		return sasl.NewPlainClient(username, username, password), nil
	case MechanismExternal:
		return sasl.NewExternalClient(""), nil
	default:
		return nil, fmt.Errorf("ircsasl: unsupported mechanism %q", mech)
	}
}
