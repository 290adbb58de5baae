//go:build windows

package walker

import (
	"io/fs"

	"golang.org/x/sys/windows"
)

func fileAttributes(path string) (uint32, bool) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, false
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return 0, false
	}
	return attrs, true
}

func isHidden(path string, _ fs.DirEntry) bool {
	attrs, ok := fileAttributes(path)
	return ok && attrs&windows.FILE_ATTRIBUTE_HIDDEN != 0
}

func isSystem(path string, _ fs.DirEntry) bool {
	attrs, ok := fileAttributes(path)
	return ok && attrs&windows.FILE_ATTRIBUTE_SYSTEM != 0
}
