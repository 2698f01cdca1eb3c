// Package task provides the pipeline framework installers are built from.
//
// # Overview
//
// An installation is a [Sequence] of [Task] values executed strictly in order.
// Tasks never call each other; they communicate through a shared [State] and
// report progress to a [Watcher].
//
// # State
//
// [State] holds at most one value per [Key]. Keys are declared once by the
// package that owns the value and give typed access without assertions at
// call sites:
//
//	var Root = task.NewKey[metadata.Root]("metadata.root")
//
//	Root.Insert(state, metadata.Root{ID: "1.20.1"})
//	root, ok := Root.Get(state)
//
// Inserting a value for a key replaces the previous one. Lookups report
// absence with a boolean; [Key.Require] turns absence into an error for tasks
// that cannot proceed without an input.
//
// # Composition
//
// A [Builder] records stages and splices them when [Builder.Build] is called,
// so the final order can be inspected before anything runs:
//
//	seq := task.NewBuilder().
//	    Add(metadataTask, librariesTask, downloadTask).
//	    Before("metadata", fabricInit).
//	    Build()
//
// Every task's Setup runs when it joins the sequence, and again after
// [Sequence.Reset].
//
// # Watchers
//
// [Sequence.Run] notifies watchers before and after each task and forwards
// events emitted by tasks. Dispatch is synchronous and in registration order.
// A task that fails aborts the run and its watchers never see OnTaskEnd.
package task
