package auth

import (
	"os/exec"
	"runtime"

	"github.com/m-mizutani/goerr/v2"
)

// OpenBrowser opens url with the platform's default handler
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	if err := cmd.Start(); err != nil {
		return goerr.Wrap(err, "failed to launch browser", goerr.V("url", url))
	}
	// Reap the child without blocking the sign-in prompt
	go func() { _ = cmd.Wait() }()
	return nil
}
