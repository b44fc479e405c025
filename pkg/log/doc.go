/*
Package log provides structured logging for the controller using zerolog.

It wraps zerolog with a single global logger, component-specific child
loggers, and a small set of domain context helpers (workflow, node,
instance). All logs are timestamped and filterable by level.

# Usage

Initializing the logger:

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Simple logging:

	log.Info("controller starting")
	log.Error("reconciliation cycle failed")

Structured logging:

	log.Logger.Info().
		Str("workflow_id", id.String()).
		Int("function_count", len(req.WorkflowFunctions)).
		Msg("workflow accepted")

Component and context loggers:

	reconcilerLog := log.WithComponent("reconciler")
	reconcilerLog.Debug().Msg("starting materialize pass")

	wfLog := log.WithWorkflowID(id.String())
	wfLog.Info().Msg("workflow stopped")

# Design

A single package-level Logger, initialized once via Init and read from
everywhere, avoids threading a logger through every call. Component and
ID-scoped child loggers (WithComponent, WithWorkflowID, WithNodeID,
WithInstanceID) attach identifying fields once so call sites don't repeat
them on every log line.

JSONOutput selects zerolog's JSON encoder for production; unset, it falls
back to zerolog.ConsoleWriter for local development.
*/
package log
