// Copyright (C) 2025 The labellint authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces the burst of write events most editors and export
// tools emit when they save a file.
const watchDebounce = 300 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Re-scan an annotation file whenever it changes",
	Long: `Watch a COCO JSON annotation file and re-run the full scan on every
change. Useful while cleaning up a dataset: keep the watcher running and see
findings shrink as fixes are saved.

The command runs until interrupted and always exits 0 on interrupt; per-scan
pass/fail is reported in the rendered output, not the exit code.`,
	Args: cobra.ExactArgs(1),
	Run:  runWatchCmd,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatchCmd(cmd *cobra.Command, args []string) {
	if err := runWatch(args[0], nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

// runWatch blocks, re-scanning path after each debounced change event.
// Closing stop ends the loop; the CLI passes nil and runs until the process
// is interrupted.
func runWatch(path string, stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init: %w", err)
	}
	defer watcher.Close()

	// Watch the parent directory, not the file: editors that rename a
	// temp file over the target would otherwise detach the watch.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	rescan := func() {
		scanID := uuid.NewString()
		scanLog := log.With("scan_id", scanID)
		scanLog.Info("change detected, rescanning", "path", target)
		code := runScan(target)
		scanLog.Info("rescan done", "exit_code", code)
	}

	// Initial scan so the watcher is useful before the first edit.
	rescan()

	var timer *time.Timer
	for {
		select {
		case <-stop:
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, rescan)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watch error", "error", err)
		}
	}
}
