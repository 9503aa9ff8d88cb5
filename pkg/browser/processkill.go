package browser

import (
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// killProcessTree terminates a browser process and its children. A bare
// proc.Kill only reaches the parent: on Windows the GPU/renderer/crashpad
// helpers survive and keep the handle open, on Unix they reparent to PID 1
// and linger. chromedp launches Chrome with Setpgid, so on Unix the process
// group ID equals the parent PID and a negative-PID kill sweeps the group.
func killProcessTree(proc *os.Process) {
	if proc == nil {
		return
	}
	pid := strconv.Itoa(proc.Pid)
	if runtime.GOOS == "windows" {
		_ = exec.Command("taskkill", "/F", "/T", "/PID", pid).Run()
		return
	}
	if err := exec.Command("kill", "-9", "--", "-"+pid).Run(); err != nil {
		_ = proc.Kill()
	}
}
