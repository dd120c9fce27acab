package cache

import (
	"fmt"
)

// PageKey identifies one cached wanted-missing page. The host and the
// monitored flag are part of the key because they change the underlying
// query result.
type PageKey struct {
	// Host is the Sonarr server address ("host:port").
	Host string

	// Monitored mirrors the only-monitored listing filter.
	Monitored bool

	// Page and PageSize address one slice of the result set.
	Page     int
	PageSize int
}

// String generates a deterministic cache key string.
//
// Example:
//
//	sonarr:wanted:sonarr.local:8989:monitored:size=50:page=3
func (k PageKey) String() string {
	monitored := "all"
	if k.Monitored {
		monitored = "monitored"
	}
	return fmt.Sprintf("sonarr:wanted:%s:%s:size=%d:page=%d",
		k.Host, monitored, k.PageSize, k.Page)
}
