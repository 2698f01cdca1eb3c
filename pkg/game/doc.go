// Package game provides the standard installation tasks for a version of
// the game: library, asset, logger, JVM and jar resolution followed by one
// download run.
//
// Every resolution task reads the merged metadata stored by the metadata
// task, records what it found under its own state key and enqueues missing
// files into the shared list at [ListKey]. [DownloadTask] then runs that
// list once.
//
// [NewSequence] assembles the tasks in their standard order:
//
//	seq := game.NewSequence(game.Options{
//	    Version:  "1.20.1",
//	    Context:  gc,
//	    Platform: game.CurrentPlatform(),
//	    Manifest: m,
//	    Mojang:   client,
//	})
//	err := seq.Run(ctx)
package game
