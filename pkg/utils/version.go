// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// UserAgent is sent on every outbound request to the agent endpoint.
func UserAgent() string {
	return "hospitalchat/" + Version
}
