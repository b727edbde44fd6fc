/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Log file management for Mimicry. Names timestamped log files and removes the
oldest ones once more than the configured number exist.
*/

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const logFilePrefix = "mimicry_"

// logFileName returns the file name for a log started at t
func logFileName(t time.Time) string {
	return fmt.Sprintf("%s%s.log", logFilePrefix, t.Format("2006-01-02_15-04-05"))
}

// ListLogFiles returns the log files in dir, oldest first
func ListLogFiles(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, logFilePrefix+"*.log"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob log files: %w", err)
	}

	modTimes := make(map[string]time.Time, len(files))
	for _, f := range files {
		if stat, err := os.Stat(f); err == nil {
			modTimes[f] = stat.ModTime()
		}
	}

	// Oldest first; names carry the timestamp so they break ties
	sort.Slice(files, func(i, j int) bool {
		ti, tj := modTimes[files[i]], modTimes[files[j]]
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return files[i] < files[j]
	})
	return files, nil
}

// pruneLogFiles removes the oldest log files beyond maxFiles
func pruneLogFiles(dir string, maxFiles int) error {
	files, err := ListLogFiles(dir)
	if err != nil {
		return err
	}
	if maxFiles <= 0 || len(files) <= maxFiles {
		return nil
	}

	for _, f := range files[:len(files)-maxFiles] {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", f, err)
		}
	}
	return nil
}
