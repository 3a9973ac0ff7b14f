package scheduler

import "errors"

// ErrAlreadyRunning is returned by RunNow while another run is in progress.
var ErrAlreadyRunning = errors.New("job already running")
