package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by the outbound collaborators (notification sink,
// text-generation service).
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}
