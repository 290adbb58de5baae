package walker

import (
	"os"
	"path/filepath"
	"runtime"
)

// ProtectedPaths returns the system locations a scan must never enter.
// Protecting these at the filter level means no caller can opt into them.
func ProtectedPaths() []string {
	switch runtime.GOOS {
	case "windows":
		sysRoot := os.Getenv("SystemRoot")
		if sysRoot == "" {
			sysRoot = `C:\Windows`
		}
		return []string{
			sysRoot,
			filepath.Join(sysRoot, "System32"),
			`C:\Program Files\WindowsApps`,
			`C:\$Recycle.Bin`,
			`C:\System Volume Information`,
		}
	case "darwin":
		return []string{"/System", "/private/var/db", "/dev", "/Library/Apple"}
	default:
		return []string{"/proc", "/sys", "/dev", "/boot", "/run", "/lost+found"}
	}
}
