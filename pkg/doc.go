// Package pkg holds the libraries behind mcinstall, a Minecraft installer.
//
// # Overview
//
// An installation is a [task] sequence over a shared typed state. Each task
// reads what earlier tasks inserted and adds its own results:
//
//	version manifest ([manifest])
//	         ↓
//	metadata chain ([metadata]) resolve inheritsFrom, merge
//	         ↓
//	libraries, assets, logger, jvm, jar ([game])
//	         ↓
//	verified parallel downloads ([download])
//
// Variants such as Fabric and Quilt ([loader/fabric]) splice their own tasks
// into the standard sequence before it is built.
//
// # Packages
//
//   - [task]: typed state keys, tasks, watchers and the sequence builder
//   - [event]: the events tasks report to watchers
//   - [manifest]: the cached version registry and its aliases
//   - [metadata]: version documents, parent resolution and merging
//   - [game]: the standard installation tasks and platform rules
//   - [download]: the download list and the parallel verifying engine
//   - [loader/fabric]: Fabric and Quilt profiles
//   - [integrations]: clients for the Mojang and loader metadata APIs
//   - [session]: the shared HTTP session and transport errors
//   - [cache]: response caches backed by files, Redis or MongoDB
//   - [config]: the TOML and YAML configuration file
//   - [render/chain]: Graphviz rendering of inheritance chains
//   - [errors]: error codes shared by every package
//   - [observability]: hooks for task and download metrics
//
// [task]: github.com/matzehuels/mcinstall/pkg/task
// [event]: github.com/matzehuels/mcinstall/pkg/event
// [manifest]: github.com/matzehuels/mcinstall/pkg/manifest
// [metadata]: github.com/matzehuels/mcinstall/pkg/metadata
// [game]: github.com/matzehuels/mcinstall/pkg/game
// [download]: github.com/matzehuels/mcinstall/pkg/download
// [loader/fabric]: github.com/matzehuels/mcinstall/pkg/loader/fabric
// [integrations]: github.com/matzehuels/mcinstall/pkg/integrations
// [session]: github.com/matzehuels/mcinstall/pkg/session
// [cache]: github.com/matzehuels/mcinstall/pkg/cache
// [config]: github.com/matzehuels/mcinstall/pkg/config
// [render/chain]: github.com/matzehuels/mcinstall/pkg/render/chain
// [errors]: github.com/matzehuels/mcinstall/pkg/errors
// [observability]: github.com/matzehuels/mcinstall/pkg/observability
package pkg
