package main

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

// acquireLock takes an exclusive advisory lock under the media
// directory so that only one process or daemon touches the download
// area at a time.
func acquireLock() (*flock.Flock, error) {
	lock := flock.New(filepath.Join(cfg.Media.Dir, ".posescout.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another posescout instance holds %s", lock.Path())
	}
	return lock, nil
}

func newProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Download and classify the unprocessed video backlog once",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			processor, err := buildProcessor(db)
			if err != nil {
				return err
			}

			lock, err := acquireLock()
			if err != nil {
				return err
			}
			defer lock.Unlock()

			return processor.ProcessBacklog(cmd.Context())
		},
	}
}
