package ports

// Navigator is the host browsing context a resolution drives.
//
// OpenSecondary asks for a new tab/window on url and reports whether the host
// granted it; a refusal (popup blocker, headless client) is normal, not an error.
// Navigate replaces the current context's location.
type Navigator interface {
	OpenSecondary(url string) bool
	Navigate(url string)
}
