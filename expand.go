package dicomexplorer

import (
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading ~/ to the current user's home directory.
// Paths that don't start with ~/ (including gs:// URLs) pass through
// unchanged, as does everything when the current user can't be
// resolved.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		usr, err := user.Current()
		if err != nil {
			return path
		}
		path = filepath.Join(usr.HomeDir, path[2:])
	}

	return path
}
