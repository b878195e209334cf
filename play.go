package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wricardo/campus-quest/game/engine"
	"github.com/wricardo/campus-quest/game/service"
)

var baseMenu = []string{"look", "inventory", "score", "log", "submit early", "quit"}

// menu lists the menu commands open in state. Submission is offered once.
func menu(state *engine.GameState) []string {
	if !state.Flags.SubmittedOnce {
		return baseMenu
	}
	commands := make([]string, 0, len(baseMenu))
	for _, m := range baseMenu {
		if m != "submit early" {
			commands = append(commands, m)
		}
	}
	return commands
}

// console plays sessions of the game service over a line-oriented terminal.
type console struct {
	svc service.GameService
	in  *bufio.Scanner
	out io.Writer
}

func newConsole(svc service.GameService, in io.Reader, out io.Writer) *console {
	return &console{svc: svc, in: bufio.NewScanner(in), out: out}
}

// Run plays world until the player quits, declines another game or input ends.
func (c *console) Run(ctx context.Context, world string) error {
	for {
		again, err := c.playOnce(ctx, world)
		if err != nil || !again {
			return err
		}
	}
}

func (c *console) playOnce(ctx context.Context, world string) (bool, error) {
	info, err := c.svc.CreateSession(ctx, world)
	if err != nil {
		return false, err
	}
	defer func() { _ = c.svc.DeleteSession(context.WithoutCancel(ctx), info.ID) }()

	intro, err := c.svc.Command(ctx, info.ID, "look")
	if err != nil {
		return false, err
	}
	fmt.Fprintln(c.out, intro.GameState.Location.Name)
	for _, msg := range intro.Messages {
		fmt.Fprintln(c.out, msg)
	}
	state := intro.GameState

	for {
		for state.Ongoing {
			c.showMenu(state)

			choice, ok := c.readChoice(ctx, info.ID)
			if !ok {
				return false, nil
			}

			res, err := c.svc.Command(ctx, info.ID, choice)
			if err != nil {
				return false, err
			}

			fmt.Fprintln(c.out, "========")
			fmt.Fprintln(c.out, "You decided to:", choice)
			for _, msg := range res.Messages {
				fmt.Fprintln(c.out, msg)
			}
			if res.Action == service.ActionQuit {
				return false, nil
			}
			state = res.GameState
		}

		if state.Outcome.Status != engine.StatusWon || !c.confirm("Would you like to keep exploring? (y/n) ") {
			break
		}
		state, err = c.svc.ContinueExploring(ctx, info.ID)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(c.out, "Keep exploring. Your score is locked.")
	}

	return c.confirm("Would you like to play again? (y/n) "), nil
}

func (c *console) showMenu(state *engine.GameState) {
	fmt.Fprintf(c.out, "What to do? Choose from: %s, take <item>, drop <item>, inspect <item>\n", strings.Join(menu(state), ", "))
	fmt.Fprintln(c.out, "At this location, you can also:")
	for _, action := range state.Location.Commands {
		fmt.Fprintln(c.out, "-", action)
	}
	if state.Unlimited {
		fmt.Fprintln(c.out, "You have Unlimited turns left....")
	} else {
		fmt.Fprintf(c.out, "You have %d turns left....\n", state.TurnsLeft)
	}
}

// readChoice prompts until the service accepts the command shape. It
// reports false when input ends.
func (c *console) readChoice(ctx context.Context, sessionID string) (string, bool) {
	for {
		fmt.Fprint(c.out, "\nEnter action: ")
		if !c.in.Scan() {
			return "", false
		}
		choice := strings.ToLower(strings.TrimSpace(c.in.Text()))
		if c.valid(ctx, sessionID, choice) {
			return choice, true
		}
		fmt.Fprintln(c.out, service.InvalidOption)
	}
}

// valid reports whether choice is a menu command, an item verb or an exit
// of the current location.
func (c *console) valid(ctx context.Context, sessionID, choice string) bool {
	if choice == "" {
		return false
	}
	state, err := c.svc.GetGameState(ctx, sessionID)
	if err != nil {
		return false
	}
	for _, m := range menu(state) {
		if choice == m {
			return true
		}
	}
	verb, name, _ := strings.Cut(choice, " ")
	if strings.TrimSpace(name) != "" && (verb == "take" || verb == "drop" || verb == "inspect") {
		return true
	}
	for _, cmd := range state.Location.Commands {
		if choice == cmd {
			return true
		}
	}
	return false
}

func (c *console) confirm(prompt string) bool {
	for {
		fmt.Fprint(c.out, prompt)
		if !c.in.Scan() {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(c.in.Text())) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
	}
}
