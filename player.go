package main

import (
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/kballard/go-shellquote"
	log "github.com/sirupsen/logrus"
)

// Player is the capability the radio needs from an external audio player.
// The real implementation spawns a process; tests swap in a double.
type Player interface {
	Start(url string) error
	Stop() error
	IsRunning() bool
}

// ProcessPlayer runs a configured player command line (e.g.
// "mplayer -volume 150") with the stream URL appended as the last
// argument, the way the shell script on the device would.
type ProcessPlayer struct {
	command string

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

func NewProcessPlayer(command string) *ProcessPlayer {
	return &ProcessPlayer{command: command}
}

var _ Player = (*ProcessPlayer)(nil)

func (p *ProcessPlayer) Start(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running() {
		return Errorf(ErrPlayback, "player process already running")
	}

	args, err := shellquote.Split(p.command)
	if err != nil {
		return Errorf(ErrPlayback, "player command %q: %v", p.command, err)
	}
	if len(args) == 0 {
		return Errorf(ErrPlayback, "player command is empty")
	}

	cmd := exec.Command(args[0], append(args[1:], url)...)
	if err := cmd.Start(); err != nil {
		return Errorf(ErrPlayback, "launch %s: %v", args[0], err)
	}

	done := make(chan struct{})
	go func() {
		if err := cmd.Wait(); err != nil {
			log.WithError(err).WithField("player", args[0]).Warn("player process exited")
		}
		close(done)
	}()

	p.cmd = cmd
	p.done = done
	return nil
}

const stopGracePeriod = 5 * time.Second

func (p *ProcessPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running() {
		p.cmd = nil
		p.done = nil
		return nil
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return Errorf(ErrPlayback, "terminate player: %v", err)
	}
	select {
	case <-p.done:
	case <-time.After(stopGracePeriod):
		log.Warn("player ignored SIGTERM, killing it")
		if err := p.cmd.Process.Kill(); err != nil {
			return Errorf(ErrPlayback, "kill player: %v", err)
		}
		<-p.done
	}

	p.cmd = nil
	p.done = nil
	return nil
}

func (p *ProcessPlayer) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running()
}

// running is called with p.mu held.
func (p *ProcessPlayer) running() bool {
	if p.cmd == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}
