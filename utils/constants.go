// File: utils/constants.go
package utils

import "time"

// DispatchPreviewPrefix is the prefix used for Redis ranked-preview cache keys.
const DispatchPreviewPrefix = "dispatchPreview:"

// DispatchPreviewTTL is the time-to-live for ranked-preview cache entries.
const DispatchPreviewTTL = 30 * time.Minute
