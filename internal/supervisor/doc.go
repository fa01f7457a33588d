// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

/*
Package supervisor runs fleetgraph's long-lived services under a suture v4
supervisor tree.

	RootSupervisor ("fleetgraph")
	├── DataSupervisor ("data-layer")
	│   └── GraphRebuildService
	├── MessagingSupervisor ("messaging-layer")
	│   └── EventRouterService (if EVENTS_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A failing event router is restarted with backoff while the API keeps
serving the last good graph. Supervisor events are logged through zerolog
via sutureslog and logging.NewSlogLogger.

	tree, _ := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewGraphRebuildService(svc, rebuildCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	err := tree.Serve(ctx)
*/
package supervisor
