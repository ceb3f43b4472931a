package clients

import (
	"net/http"
	"time"
)

type HTTP struct{ c *http.Client }

// NewHTTP returns the shared client. The timeout is a hard cap behind the
// per-stage context deadlines; audio uploads need the generous one.
func NewHTTP() *HTTP { return &HTTP{c: &http.Client{Timeout: 10 * time.Minute}} }
