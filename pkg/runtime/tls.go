package runtime

import (
	"crypto/tls"
	"sync"
)

var (
	tlsProviderOnce sync.Once
	tlsProviderErr  error
	defaultTLSConfig *tls.Config
)

// installDefaultTLSProvider configures the process-wide default TLS
// minimum version and curve preferences exactly once. Repeated or concurrent
// calls from multiple New invocations observe the result of the first
// call only; crypto/tls has no ecosystem-library replacement for this
// concern in the example pack, so this one piece stays on the standard
// library.
func installDefaultTLSProvider() error {
	tlsProviderOnce.Do(func() {
		defaultTLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			CurvePreferences: []tls.CurveID{
				tls.X25519,
				tls.CurveP256,
			},
		}
	})
	return tlsProviderErr
}
