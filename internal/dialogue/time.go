package dialogue

import "time"

// timeNow is a package-level variable for testability.
// Tests replace it to resolve "today" and "tomorrow" deterministically.
var timeNow = time.Now
