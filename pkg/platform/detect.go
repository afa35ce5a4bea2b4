// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

const (
	// PackageManagerNone means no supported system package manager was found.
	PackageManagerNone PackageManager = ""
	// PackageManagerApt is Debian/Ubuntu apt-get.
	PackageManagerApt PackageManager = "apt-get"
	// PackageManagerDnf is Fedora/RHEL dnf.
	PackageManagerDnf PackageManager = "dnf"
	// PackageManagerBrew is Homebrew.
	PackageManagerBrew PackageManager = "brew"
)

type (
	// PackageManager names a system package manager binary.
	PackageManager string

	// Host describes the machine devsetup runs on.
	Host struct {
		// OS is a runtime.GOOS value.
		OS string
		// PackageManager is the preferred system package manager, if any.
		PackageManager PackageManager
	}

	// LookPathFunc resolves an executable name to a path.
	LookPathFunc func(name string) (string, error)
)

// Detect inspects the running host. lookPath decides which package
// managers are installed.
func Detect(lookPath LookPathFunc) Host {
	return DetectOS(runtime.GOOS, lookPath)
}

// DetectOS is Detect for an explicit GOOS value.
func DetectOS(goos string, lookPath LookPathFunc) Host {
	h := Host{OS: goos}

	var candidates []PackageManager
	switch goos {
	case Darwin:
		candidates = []PackageManager{PackageManagerBrew}
	case Linux:
		candidates = []PackageManager{PackageManagerApt, PackageManagerDnf, PackageManagerBrew}
	}

	for _, pm := range candidates {
		if _, err := lookPath(string(pm)); err == nil {
			h.PackageManager = pm
			break
		}
	}
	return h
}

// IsDarwin reports whether the host is macOS.
func (h Host) IsDarwin() bool { return h.OS == Darwin }

// IsWindows reports whether the host is Windows.
func (h Host) IsWindows() bool { return h.OS == Windows }

// String returns a short description such as "linux/apt-get".
func (h Host) String() string {
	if h.PackageManager == PackageManagerNone {
		return h.OS
	}
	return h.OS + "/" + string(h.PackageManager)
}
