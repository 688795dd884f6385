package dockertag

import "time"

const DefaultExpirationTime = 5 * time.Minute

type Config struct {
	// ExpirationTime is how long fetched tags of a repository are reused.
	ExpirationTime time.Duration
}
