package game

import (
	"context"
	"path/filepath"

	"github.com/matzehuels/mcinstall/pkg/download"
	mcerrors "github.com/matzehuels/mcinstall/pkg/errors"
	"github.com/matzehuels/mcinstall/pkg/event"
	"github.com/matzehuels/mcinstall/pkg/integrations/mojang"
	"github.com/matzehuels/mcinstall/pkg/metadata"
	"github.com/matzehuels/mcinstall/pkg/task"
)

// LoggerTaskName identifies [LoggerTask].
const LoggerTaskName = "logger"

// LoggerConfig is the client logging configuration file and the JVM
// argument template referencing it through ${path}.
type LoggerConfig struct {
	Path     string
	Argument string
}

// LoggerConfigKey holds the [LoggerConfig], absent for versions without one.
var LoggerConfigKey = task.NewKey[LoggerConfig]("game.logger")

type clientLogging struct {
	Argument string `json:"argument"`
	File     struct {
		ID string `json:"id"`
		mojang.Download
	} `json:"file"`
}

// LoggerTask enqueues the client logging configuration.
type LoggerTask struct{}

func (LoggerTask) Name() string { return LoggerTaskName }

func (LoggerTask) Setup(s *task.State) {
	LoggerConfigKey.Delete(s)
}

func (LoggerTask) Execute(_ context.Context, s *task.State, w task.Watcher) error {
	gc, err := ContextKey.Require(s)
	if err != nil {
		return err
	}
	doc, err := metadata.MergedKey.Require(s)
	if err != nil {
		return err
	}
	logging, ok := doc.Map("logging")
	if !ok {
		return nil
	}
	var client clientLogging
	found, err := logging.Decode("client", &client)
	if err != nil || !found {
		return err
	}
	if client.File.ID == "" || filepath.Base(client.File.ID) != client.File.ID {
		return mcerrors.New(mcerrors.ErrCodeInvalidMetadata, "metadata: /logging/client/file/id is invalid")
	}

	w.OnEvent(event.ResolveBegin{Facet: event.FacetLogger})
	cfg := LoggerConfig{
		Path:     filepath.Join(gc.AssetsDir(), "log_configs", client.File.ID),
		Argument: client.Argument,
	}
	downloads(s).AddVerified(download.Entry{
		URL:  client.File.URL,
		Dest: cfg.Path,
		Size: client.File.Size,
		SHA1: client.File.SHA1,
		Name: client.File.ID,
	})
	LoggerConfigKey.Insert(s, cfg)
	w.OnEvent(event.ResolveEnd{Facet: event.FacetLogger, Count: 1})
	return nil
}
