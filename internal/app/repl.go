package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klokku/klokku-calendar/pkg/command"
	log "github.com/sirupsen/logrus"
)

// maxLineSize bounds one command line. Quoted descriptions can be long.
const maxLineSize = 1 << 20

// ErrMissingExit is returned when a command file ends without an exit command.
var ErrMissingExit = errors.New("command file must end with exit")

type Mode string

const (
	ModeInteractive Mode = "interactive"
	ModeHeadless    Mode = "headless"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeInteractive:
		return ModeInteractive, nil
	case ModeHeadless:
		return ModeHeadless, nil
	}
	return "", fmt.Errorf("unknown mode %q, expected interactive or headless", s)
}

// Session reads command lines from in and writes results and errors to out.
type Session struct {
	Mode Mode
	In   io.Reader
	Out  io.Writer
	// Prompt is printed before every line in interactive mode.
	Prompt string
}

// Run executes lines until exit or the end of input. A failing command is reported and the
// loop continues. In headless mode the input must end with exit.
func (a *Application) Run(ctx context.Context, s Session) error {
	scanner := bufio.NewScanner(s.In)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)
	for {
		if s.Mode == ModeInteractive && s.Prompt != "" {
			fmt.Fprint(s.Out, s.Prompt)
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if s.Mode == ModeHeadless {
			fmt.Fprintf(s.Out, "> %s\n", line)
		}

		result, err := a.execute(ctx, line)
		if err != nil {
			log.Debugf("command %q failed: %v", line, err)
			fmt.Fprintf(s.Out, "Error: %v\n", err)
			continue
		}
		if result.Exit {
			return nil
		}
		fmt.Fprint(s.Out, command.Format(result))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read commands: %w", err)
	}
	if s.Mode == ModeHeadless {
		return ErrMissingExit
	}
	return nil
}

func (a *Application) execute(ctx context.Context, line string) (command.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deps.Dispatcher.Execute(ctx, line)
}
