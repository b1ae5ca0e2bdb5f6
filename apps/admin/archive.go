package main

import (
	"context"
	"time"
)

func (cli *commandLine) archive(cutoff time.Time) error {
	moved, err := cli.attRepo.ArchiveBefore(context.Background(), cutoff)
	if err != nil {
		return err
	}
	logger.Printf("archived %d attendance record(s)\n", moved)
	return nil
}
