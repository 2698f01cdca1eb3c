// Package metadata resolves version metadata documents and their parent
// chains.
//
// A version document may name a parent through "inheritsFrom". [Task]
// follows those links from a root identifier, loading each document from
// disk or fetching it through a [Repository], and merges the chain into one
// effective document: child scalars win, lists are concatenated parent
// first, objects merge key by key. Chains longer than [DefaultMaxParents]
// fail with [ChainTooDeepError].
//
// Variants take over identifiers they synthesize by inserting a repository
// override into [RepositoriesKey] before the task runs.
package metadata
