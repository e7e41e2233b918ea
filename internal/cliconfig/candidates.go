package cliconfig

import "path/filepath"

// File names fixed under the session home directory.
const (
	LockFileName = ".wallpaper-setup.lock"
	LogFileName  = ".wallpaper-setup.log"
)

// DefaultCandidates returns the wallpaper search paths in priority order.
// User files under ~/.e/e/backgrounds win over the images shipped with the
// distro; the stock Enlightenment theme is the last resort.
func DefaultCandidates(home string) []string {
	return []string{
		filepath.Join(home, ".e", "e", "backgrounds", "default-wallpaper.edj"),
		filepath.Join(home, ".e", "e", "backgrounds", "default-wallpaper.png"),
		filepath.Join(home, ".e", "e", "backgrounds", "background-image.png"),
		"/usr/share/backgrounds/kuns/default-wallpaper.png",
		"/usr/share/backgrounds/default-wallpaper.png",
		"/usr/share/enlightenment/data/backgrounds/Default.edj",
	}
}
