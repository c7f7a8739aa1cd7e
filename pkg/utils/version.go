// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

// Set at build time with -ldflags "-X".
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// UserAgent identifies streamgate to upstream providers and to gateways it
// calls as a client.
func UserAgent() string {
	return "streamgate/" + Version
}
