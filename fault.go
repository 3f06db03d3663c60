package cassandra

import (
	"os"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var (
	faultMu      sync.RWMutex
	faultHandler = defaultFaultHandler
)

// SetFaultHandler installs the process-wide handler for failures that cannot
// be returned to a caller, such as a handle release reporting an error from
// Close or a finalizer. The returned function restores the previous handler.
// The default handler logs the fault to stderr and panics.
func SetFaultHandler(h func(error)) (restore func()) {
	if h == nil {
		h = defaultFaultHandler
	}
	faultMu.Lock()
	prev := faultHandler
	faultHandler = h
	faultMu.Unlock()

	return func() {
		faultMu.Lock()
		faultHandler = prev
		faultMu.Unlock()
	}
}

func reportFault(err error) {
	faultMu.RLock()
	h := faultHandler
	faultMu.RUnlock()
	h(err)
}

func defaultFaultHandler(err error) {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	_ = level.Error(logger).Log("msg", "unrecoverable resource fault", "err", err)
	panic(err)
}
