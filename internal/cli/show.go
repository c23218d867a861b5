package cli

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openerCommand returns the command that opens path with the desktop's
// default application.
func openerCommand(goos, path string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{path}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{path}, nil
	}
	return "", nil, fmt.Errorf("no viewer known for %s", goos)
}

// openFile opens path in the system viewer without waiting for it to exit.
func openFile(path string) error {
	name, args, err := openerCommand(runtime.GOOS, path)
	if err != nil {
		return err
	}
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait() //nolint:errcheck
	return nil
}
