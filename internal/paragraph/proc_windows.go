//go:build windows

package paragraph

import (
	"os/exec"
	"time"
)

const waitDelay = 5 * time.Second

func configureCommandProcess(cmd *exec.Cmd) {
	cmd.WaitDelay = waitDelay
}
