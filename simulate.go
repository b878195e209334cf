package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wricardo/campus-quest/game/scenario"
	"github.com/wricardo/campus-quest/game/service"
)

var errScenarioFailed = errors.New("scenario verification failed")

// runScripts replays every script found in paths (files or directories)
// and reports PASS or FAIL for each.
func runScripts(out io.Writer, worlds service.ConfigManager, paths []string, transcript bool) error {
	var scripts []*scenario.Script
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			found, err := scenario.LoadScripts(path)
			if err != nil {
				return err
			}
			scripts = append(scripts, found...)
			continue
		}
		s, err := scenario.LoadScript(path)
		if err != nil {
			return err
		}
		scripts = append(scripts, s)
	}

	failed := 0
	for _, s := range scripts {
		world := s.World
		if world == "" {
			world = worlds.DefaultName()
		}
		cat, err := worlds.LoadWorld(world)
		if err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", s, err)
			failed++
			continue
		}

		res, err := s.Run(cat)
		if err == nil {
			err = s.Verify(res)
		}
		if err != nil {
			fmt.Fprintf(out, "FAIL %s: %v\n", s, err)
			failed++
			continue
		}

		fmt.Fprintf(out, "PASS %s: %s, score %d, turn %d, log %v\n", s, res.Outcome.Status, res.Score, res.Turn, res.IDs)
		if transcript {
			fmt.Fprintln(out, res.Transcript)
		}
	}

	fmt.Fprintf(out, "%d scripts, %d failed\n", len(scripts), failed)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errScenarioFailed, failed, len(scripts))
	}
	return nil
}
