//go:build darwin && cgo

package darwin

import "github.com/pluxuryv8/astra-bridge/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		return &platform.Provider{
			Inputter:      NewInputter(),
			Screenshotter: NewScreenshotter(),
			Permissions:   NewPermissionChecker(),
		}, nil
	}
}
